package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"chat-translator/migrations"

	_ "modernc.org/sqlite" //revive:disable:blank-imports
)

// SQLiteStore keeps documents as rows of the documents table. A save is a
// single upsert statement, which sqlite applies atomically. Update wraps the
// select and the upsert in a BEGIN IMMEDIATE transaction, which takes the
// database write lock up front.
type SQLiteStore struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewSQLiteStore(path string, log *zap.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sqlx.Connect("sqlite", withBusyTimeout(path))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// sqlite does not support concurrent writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := applyMigrations(db.DB, log); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("close database after migration failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	log.Info("database ready", zap.String("path", path))
	return &SQLiteStore{db: db, log: log}, nil
}

// withBusyTimeout makes a connection wait for a lock held by another process
// instead of failing with SQLITE_BUSY.
func withBusyTimeout(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)"
}

func applyMigrations(db *sql.DB, log *zap.Logger) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	drv, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug("no database migrations to apply")
			return nil
		}
		return err
	}
	log.Info("database migrations applied")
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	var body []byte
	err := s.db.GetContext(ctx, &body, `SELECT body FROM documents WHERE doc_key = ?`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return body, nil
}

const upsertQuery = `
        INSERT INTO documents (doc_key, body, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT(doc_key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at;
    `

func (s *SQLiteStore) Save(ctx context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, upsertQuery, key, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Update uses a dedicated connection because database/sql transactions
// start with a plain BEGIN, which only takes the write lock at the first
// write and lets two readers race.
func (s *SQLiteStore) Update(ctx context.Context, key string, fn UpdateFunc) (err error) {
	if err := validateKey(key); err != nil {
		return err
	}
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("begin %s: %w", key, err)
	}
	defer func() {
		if err == nil {
			return
		}
		if _, rbErr := conn.ExecContext(context.WithoutCancel(ctx), "ROLLBACK"); rbErr != nil {
			s.log.Error("rollback update", zap.String("key", key), zap.Error(rbErr))
		}
	}()

	var old []byte
	if err = conn.GetContext(ctx, &old, `SELECT body FROM documents WHERE doc_key = ?`, key); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("select %s: %w", key, err)
		}
		old = nil
	}
	next, err := fn(old)
	if err != nil {
		return err
	}
	if _, err = conn.ExecContext(ctx, upsertQuery, key, next, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	if _, err = conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		s.log.Error("close database", zap.Error(err))
		return err
	}
	return nil
}
