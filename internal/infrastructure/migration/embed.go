package migration

import (
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Dir is where new migration files are created, relative to the module root
const Dir = "internal/infrastructure/migration/sql"

//go:embed sql/*.sql
var files embed.FS

// Source returns the migrations compiled into the binary
func Source() (source.Driver, error) {
	src, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return src, nil
}
