// Package migrations embeds the word catalog schema and applies it with
// goose. Both the server and the seed tool call Run at startup, so a fresh
// database file is usable without a separate migrate step.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var fs embed.FS

// Run brings db up to the latest words schema. Idempotent.
func Run(db *sql.DB) error {
	goose.SetBaseFS(fs)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("applying words schema: %w", err)
	}
	return nil
}
