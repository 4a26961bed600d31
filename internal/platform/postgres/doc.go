// Package postgres implements the store interfaces on PostgreSQL through the
// pgx database/sql driver, maps Postgres error codes onto store errors, and
// embeds the goose schema migrations.
package postgres
