// Package pgstore persists the merged record set in PostgreSQL.
//
// Each record is one row of merged_records, keyed by its position in the set.
// The data column is json rather than jsonb so column order survives a round trip.
package pgstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/sheetmerge/internal/record"
	"github.com/JonMunkholm/sheetmerge/internal/store"
)

// DefaultTable holds the persisted set.
const DefaultTable = "merged_records"

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store implements store.Store on a PostgreSQL table.
type Store struct {
	db    DB
	table string
}

var _ store.Store = (*Store)(nil)

// New creates a store on db. An empty table means DefaultTable.
func New(db DB, table string) *Store {
	if table == "" {
		table = DefaultTable
	}
	return &Store{db: db, table: table}
}

// Name implements store.Store.
func (s *Store) Name() string { return "postgres" }

func (s *Store) ident() string {
	return pgx.Identifier{s.table}.Sanitize()
}

// EnsureSchema creates the table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	position INTEGER PRIMARY KEY,
	data     JSON    NOT NULL
)`, s.ident()))
	if err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// Load implements store.Store. An empty table is an empty set.
func (s *Store) Load(ctx context.Context) (record.Set, error) {
	rows, err := s.db.Query(ctx, fmt.Sprintf("SELECT data FROM %s ORDER BY position", s.ident()))
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", store.ErrRead, s.table, err)
	}

	raw, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("%w: scan %s: %v", store.ErrRead, s.table, err)
	}

	set := make(record.Set, len(raw))
	for i, data := range raw {
		if err := set[i].UnmarshalJSON(data); err != nil {
			return nil, fmt.Errorf("%w: decode row %d: %v", store.ErrRead, i, err)
		}
	}
	return set, nil
}

// Save implements store.Store. The table is emptied and refilled with COPY inside
// one transaction, so readers see either the old set or the new one.
func (s *Store) Save(ctx context.Context, set record.Set) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", store.ErrWrite, err)
	}
	defer tx.Rollback(ctx) // No-op after commit

	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s", s.ident())); err != nil {
		return fmt.Errorf("%w: clear %s: %v", store.ErrWrite, s.table, err)
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{s.table},
		[]string{"position", "data"},
		pgx.CopyFromSlice(len(set), func(i int) ([]any, error) {
			data, err := set[i].MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("encode record %d: %w", i, err)
			}
			return []any{int32(i), json.RawMessage(data)}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("%w: copy into %s: %v", store.ErrWrite, s.table, err)
	}
	if n != int64(len(set)) {
		return fmt.Errorf("%w: copied %d of %d records", store.ErrWrite, n, len(set))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", store.ErrWrite, err)
	}
	return nil
}
