// Package postgres holds the PostgreSQL adapters for the decision engine:
// policies, borrower profiles, the decision ledger and the event outbox.
package postgres

import "embed"

// Migrations holds the schema migrations, applied with
// postgres.RunMigrations(dsn, Migrations, MigrationsDir).
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"
