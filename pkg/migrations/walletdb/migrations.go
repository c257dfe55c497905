// Package walletdb holds all the migrations for the wallet gateway database
package walletdb

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the registry all wallet gateway migrations attach to
var Migrations = migrate.NewMigrations()
