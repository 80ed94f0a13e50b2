package dictionary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported SQL driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const createWordsTable = `CREATE TABLE IF NOT EXISTS words (
	word TEXT PRIMARY KEY,
	definition TEXT NOT NULL DEFAULT ''
)`

// SQL is a dictionary stored in a "words" table.
type SQL struct {
	db          *sql.DB
	lookupQuery string
	upsertQuery string
}

// OpenSQL connects to the database and checks the connection.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQL, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", driver, err)
	}

	return NewSQL(db, driver), nil
}

// NewSQL wraps an open database. The driver name selects the placeholder
// style of the queries.
func NewSQL(db *sql.DB, driver string) *SQL {
	p1, p2 := "?", "?"
	if driver == DriverPostgres {
		p1, p2 = "$1", "$2"
	}

	return &SQL{
		db:          db,
		lookupQuery: "SELECT word, definition FROM words WHERE word = " + p1,
		upsertQuery: "INSERT INTO words (word, definition) VALUES (" + p1 + ", " + p2 + ") " +
			"ON CONFLICT (word) DO UPDATE SET definition = excluded.definition",
	}
}

// Lookup implements Dictionary.
func (s *SQL) Lookup(ctx context.Context, word string) (Entry, error) {
	var entry Entry
	err := s.db.QueryRowContext(ctx, s.lookupQuery, Normalize(word)).Scan(&entry.Word, &entry.Definition)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("looking up %q: %w", word, err)
	}
	return entry, nil
}

// Import implements Importer. The table is created when missing and all
// entries are written in one transaction.
func (s *SQL) Import(ctx context.Context, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, createWordsTable); err != nil {
		return fmt.Errorf("creating words table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.upsertQuery)
	if err != nil {
		return fmt.Errorf("preparing import: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, Normalize(e.Word), e.Definition); err != nil {
			return fmt.Errorf("importing %q: %w", e.Word, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	return nil
}

// Close implements Dictionary.
func (s *SQL) Close() error {
	return s.db.Close()
}
