package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the registry applied by the migrate CLI subcommand.
var Migrations = migrate.NewMigrations()
