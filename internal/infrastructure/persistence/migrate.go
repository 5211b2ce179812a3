package persistence

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Migrate aplica en orden los scripts del dialecto que aún no figuran en schema_migrations.
func (s *Store) Migrate(ctx context.Context) error {
	c := conn{q: s.db, d: s.dialect}
	if _, err := c.exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("crear schema_migrations: %w", err)
	}

	dir := path.Join("migrations", s.dialect.String())
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("leer migraciones: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		version := strings.TrimSuffix(e.Name(), ".sql")
		n, err := c.count(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version)
		if err != nil {
			return fmt.Errorf("consultar migración %s: %w", version, err)
		}
		if n > 0 {
			continue
		}
		body, err := migrationsFS.ReadFile(path.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		if err := s.applyMigration(ctx, version, string(body)); err != nil {
			return err
		}
		s.log.Info().Str("version", version).Msg("migración aplicada")
	}
	return nil
}

func (s *Store) applyMigration(ctx context.Context, version, body string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	c := conn{q: tx, d: s.dialect}
	for _, stmt := range splitStatements(body) {
		if _, err := c.exec(ctx, stmt); err != nil {
			return fmt.Errorf("migración %s: %w", version, err)
		}
	}
	if _, err := c.exec(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
		version, tsArg(time.Now())); err != nil {
		return fmt.Errorf("registrar migración %s: %w", version, err)
	}
	return tx.Commit()
}

// splitStatements separa un script por ";" ignorando las líneas de comentario.
func splitStatements(script string) []string {
	var lines []string
	for _, l := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(l), "--") {
			continue
		}
		lines = append(lines, l)
	}
	var out []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
