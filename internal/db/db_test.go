package db_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/shikho/dynqr/internal/db"
)

// TestWALMode verifies that file-backed stores get WAL journal mode.
func TestWALMode(t *testing.T) {
	gdb, err := db.Open(db.DSN(filepath.Join(t.TempDir(), "wal_test.db")), zerolog.Nop())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	var mode string
	gdb.Raw("PRAGMA journal_mode").Scan(&mode)
	if mode != "wal" {
		t.Errorf("expected journal_mode=wal, got %q", mode)
	}
}

func TestDSN_InMemoryDefault(t *testing.T) {
	for _, p := range []string{"", " ", ":memory:"} {
		if got := db.DSN(p); got != "file::memory:?cache=shared&_foreign_keys=on" {
			t.Errorf("DSN(%q) = %q", p, got)
		}
	}
}

// TestInit_CreatesIndexes verifies that Init creates the ordering indexes
// that GORM does not auto-create.
func TestInit_CreatesIndexes(t *testing.T) {
	if err := db.Init(filepath.Join(t.TempDir(), "init.db"), zerolog.Nop()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	sqlDB, err := db.Conn().DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}

	if found := indexNames(t, sqlDB, "mappings"); !found["idx_mapping_order"] {
		t.Errorf("index idx_mapping_order missing from mappings; found: %v", found)
	}
	if found := indexNames(t, sqlDB, "questions"); !found["idx_question_order"] {
		t.Errorf("index idx_question_order missing from questions; found: %v", found)
	}
}

func indexNames(t *testing.T, sqlDB *sql.DB, table string) map[string]bool {
	t.Helper()
	rows, err := sqlDB.Query("PRAGMA index_list(" + table + ")")
	if err != nil {
		t.Fatalf("PRAGMA index_list: %v", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var seq int
		var name string
		var unique bool
		var origin, partial string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			t.Fatalf("scan: %v", err)
		}
		out[name] = true
	}
	return out
}
