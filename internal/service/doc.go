// Package service holds the application use cases. Services load data through
// the store interfaces, apply the access policy and domain rules, and run
// multi-row writes inside store.RunInTransaction.
//
// ReportService feeds already-loaded collections into the pure aggregations
// in internal/domain/workload, internal/domain/timeline and
// internal/domain/summary; it never writes.
package service
