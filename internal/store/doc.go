// Package store defines the persistence interfaces for users, projects and
// tasks, the errors their implementations return, and transaction helpers.
// Implementations live under internal/platform.
package store
