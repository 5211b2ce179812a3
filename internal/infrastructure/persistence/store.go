// Package persistence implementa los repositorios del dominio sobre database/sql.
// Por defecto usa un archivo SQLite embebido (modernc.org/sqlite, sin cgo) bajo data/;
// con STORE_DRIVER=postgres usa un pool pgx expuesto como *sql.DB.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/jhoicas/inventario-pos/internal/domain/repository"
	"github.com/jhoicas/inventario-pos/pkg/config"
)

var (
	_ repository.TxRunner   = (*Store)(nil)
	_ repository.UnitOfWork = (*Store)(nil)
)

// Store dueño de la conexión. Implementa TxRunner y, fuera de transacción,
// UnitOfWork para lecturas (reportes, exportaciones).
type Store struct {
	*unitOfWork
	db      *sql.DB
	pool    *pgxpool.Pool
	dialect dialect
	log     zerolog.Logger
}

// Open abre el almacenamiento configurado. No aplica migraciones; ver Migrate.
func Open(ctx context.Context, cfg config.StoreConfig, log zerolog.Logger) (*Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.DatabaseURL, log)
	default:
		return OpenSQLite(ctx, cfg.Path, log)
	}
}

// OpenSQLite abre (o crea) el archivo de base de datos en path.
// SQLite admite un solo escritor; se usa una sola conexión.
func OpenSQLite(ctx context.Context, path string, log zerolog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("crear directorio de datos: %w", err)
		}
	}
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	log.Info().Str("driver", "sqlite").Str("path", path).Msg("almacenamiento abierto")
	return newStore(db, nil, dialectSQLite, log), nil
}

func openPostgres(ctx context.Context, databaseURL string, log zerolog.Logger) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	poolConfig.MaxConns = 8
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	// Codec NUMERIC <-> shopspring/decimal en todas las conexiones del pool.
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	log.Info().Str("driver", "postgres").Msg("almacenamiento abierto")
	return newStore(stdlib.OpenDBFromPool(pool), pool, dialectPostgres, log), nil
}

func newStore(db *sql.DB, pool *pgxpool.Pool, d dialect, log zerolog.Logger) *Store {
	return &Store{
		unitOfWork: newUnitOfWork(conn{q: db, d: d}, nil),
		db:         db,
		pool:       pool,
		dialect:    d,
		log:        log,
	}
}

// Close libera la conexión.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// Driver nombre del motor activo.
func (s *Store) Driver() string { return s.dialect.String() }

// Ping verifica la conexión.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Run inicia una transacción, ejecuta fn con una unidad de trabajo atada a ella y hace
// Commit o Rollback. El rollback diferido también cubre un panic dentro de fn.
func (s *Store) Run(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(newUnitOfWork(conn{q: tx, d: s.dialect}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
