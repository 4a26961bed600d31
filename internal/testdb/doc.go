// Package testdb opens the integration test database, applies the embedded
// migrations once per test binary, and isolates each test in a transaction
// that is always rolled back.
//
// Tests using it are skipped unless DATABASE_URL (or TASKHUB_TEST_DB_URL) is set.
package testdb
