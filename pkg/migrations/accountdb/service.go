// Package accountdb holds all the migrations for the account database
package accountdb

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the collection of all migrations for the account database
var Migrations = migrate.NewMigrations()
