// Package domain holds the core entities of the tracker: users, projects with
// their members and modules, and tasks. Entities validate themselves and carry
// no persistence or transport concerns.
//
// The reporting views live in subpackages: workload (weekly hours, overload,
// availability), timeline (Gantt placement) and summary (totals and exports).
package domain
