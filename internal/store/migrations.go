package store

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

// Schema files live under migrations/<dialect>/ as <version>_<name>.sql.
// Both dialect directories carry the same versions so a task store reads
// the same on SQLite and PostgreSQL.
//
//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var schemaFiles embed.FS

const createSchemaMigrations = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

type migration struct {
	version int
	name    string
	sql     string
}

func (m migration) String() string {
	return fmt.Sprintf("%03d_%s", m.version, m.name)
}

// migrator brings a task database up to the newest embedded schema. Each
// file runs in its own transaction together with its schema_migrations row,
// so a failed file leaves no partial record behind.
type migrator struct {
	db *sql.DB
	d  dialect
}

func migrate(db *sql.DB, d dialect) error {
	m := migrator{db: db, d: d}

	if _, err := db.Exec(createSchemaMigrations); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	todo, err := m.pending()
	if err != nil {
		return err
	}
	for _, mig := range todo {
		if err := m.apply(mig); err != nil {
			return err
		}
	}
	return nil
}

// pending returns the dialect's migrations not yet recorded, oldest first.
func (m migrator) pending() ([]migration, error) {
	all, err := readMigrations(m.d.name)
	if err != nil {
		return nil, err
	}

	rows, err := m.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	defer rows.Close()

	done := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan schema version: %w", err)
		}
		done[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	todo := all[:0]
	for _, mig := range all {
		if !done[mig.version] {
			todo = append(todo, mig)
		}
	}
	return todo, nil
}

func (m migrator) apply(mig migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("migration %s: %w", mig, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(mig.sql); err != nil {
		return fmt.Errorf("migration %s failed: %w", mig, err)
	}
	record := m.d.rebind(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`)
	if _, err := tx.Exec(record, mig.version, mig.name); err != nil {
		return fmt.Errorf("migration %s: recording version: %w", mig, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration %s: commit: %w", mig, err)
	}
	return nil
}

// readMigrations loads the embedded schema files for one dialect sorted by
// version. Duplicate versions are rejected.
func readMigrations(dialectName string) ([]migration, error) {
	files, err := fs.Glob(schemaFiles, path.Join("migrations", dialectName, "*.sql"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no migrations embedded for dialect %q", dialectName)
	}

	out := make([]migration, 0, len(files))
	byVersion := make(map[int]string, len(files))
	for _, file := range files {
		version, name, err := parseMigrationName(path.Base(file))
		if err != nil {
			return nil, err
		}
		if prev, dup := byVersion[version]; dup {
			return nil, fmt.Errorf("migrations %s and %s share version %d", prev, path.Base(file), version)
		}
		byVersion[version] = path.Base(file)

		body, err := schemaFiles.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		out = append(out, migration{version: version, name: name, sql: string(body)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// parseMigrationName splits "002_create_tags.sql" into 2 and "create_tags".
func parseMigrationName(filename string) (int, string, error) {
	prefix, name, ok := strings.Cut(strings.TrimSuffix(filename, ".sql"), "_")
	if !ok || name == "" {
		return 0, "", fmt.Errorf("migration %q is not named <version>_<name>.sql", filename)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil || version <= 0 {
		return 0, "", fmt.Errorf("migration %q has no positive version prefix", filename)
	}
	return version, name, nil
}
