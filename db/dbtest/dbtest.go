// Package dbtest opens throwaway in-memory sqlite databases with the full schema.
package dbtest

import (
	"context"
	"testing"

	"github.com/uptrace/bun"

	"github.com/padraicbc/runcrew/config"
	"github.com/padraicbc/runcrew/db"
)

// New returns a migrated in-memory database that is closed when the test ends.
func New(t *testing.T) *bun.DB {
	t.Helper()
	ctx := context.Background()

	bdb, err := db.Open(ctx, config.DriverSQLite, "file::memory:", false)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = bdb.Close() })

	if err := db.CreateTables(ctx, bdb); err != nil {
		t.Fatalf("create tables: %v", err)
	}
	return bdb
}
