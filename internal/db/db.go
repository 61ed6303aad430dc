package db

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/theLastOfCats/mangadock/internal/kv"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQLite string

//go:embed schema_mysql.sql
var schemaMySQL string

const (
	DialectSQLite = "sqlite"
	DialectMySQL  = "mysql"
)

// DB is a SQL-backed kv.Store. Each slot is one row of kv_slots.
type DB struct {
	*sql.DB
	Dialect string
}

var _ kv.Store = (*DB)(nil)

func New(dsn string) (*DB, error) {
	var db *sql.DB
	var err error
	var dialect string

	// MySQL DSN: user:password@tcp(host:port)/dbname
	// SQLite DSN: file path, :memory: or file::memory:?cache=shared
	isMySQL := strings.Contains(dsn, "@")

	if isMySQL {
		dialect = DialectMySQL
		db, err = sql.Open("mysql", dsn)
	} else {
		dialect = DialectSQLite
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			dir := filepath.Dir(dsn)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}

		if !strings.Contains(dsn, "?") {
			dsn += "?"
		} else {
			dsn += "&"
		}

		// modernc.org/sqlite applies _pragma parameters on every new connection
		pragmas := []string{
			"_pragma=journal_mode(WAL)",
			"_pragma=busy_timeout(30000)",
			"_pragma=synchronous(NORMAL)",
		}
		dsn += strings.Join(pragmas, "&")

		db, err = sql.Open("sqlite", dsn)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := initSchema(db, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

func initSchema(db *sql.DB, dialect string) error {
	schema := schemaSQLite
	if dialect == DialectMySQL {
		schema = schemaMySQL
	}

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

func (db *DB) Get(key string) ([]byte, error) {
	var value []byte
	err := db.QueryRow(`SELECT slot_value FROM kv_slots WHERE slot_key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get slot %s: %w", key, err)
	}
	return value, nil
}

func (db *DB) Set(key string, value []byte) error {
	query := `INSERT INTO kv_slots (slot_key, slot_value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(slot_key) DO UPDATE SET slot_value=excluded.slot_value, updated_at=excluded.updated_at`
	if db.Dialect == DialectMySQL {
		query = `INSERT INTO kv_slots (slot_key, slot_value, updated_at) VALUES (?, ?, ?)
	ON DUPLICATE KEY UPDATE slot_value=VALUES(slot_value), updated_at=VALUES(updated_at)`
	}

	if _, err := db.Exec(query, key, value, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("set slot %s: %w", key, err)
	}
	return nil
}

func (db *DB) Delete(key string) error {
	if _, err := db.Exec(`DELETE FROM kv_slots WHERE slot_key = ?`, key); err != nil {
		return fmt.Errorf("delete slot %s: %w", key, err)
	}
	return nil
}
