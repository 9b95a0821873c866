// Package migrations embeds SQL migration files into the binary.
//
// Importing this package for side effects registers the files with the
// database package.
package migrations

import (
	"embed"

	"github.com/nerrad567/gray-logic-telemetry/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
