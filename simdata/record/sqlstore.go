package record

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/textforge/simcse-data/simdata/corpus"
)

// SQLStore persists records in a libsql/SQLite database, one row per example
// with the three list fields as varint-packed BLOB columns. Row order is
// insertion order.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore opens (or creates) the record table at the given DSN,
// e.g. "file:records.db" or "file::memory:?cache=shared".
func NewSQLStore(dsn string) (*SQLStore, error) {
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open record database: %w", err)
	}
	s := &SQLStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// init sets up the examples table.
func (s *SQLStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS examples (
		id TEXT PRIMARY KEY UNIQUE,
		seq INTEGER,
		input_ids BLOB NOT NULL,
		segment_ids BLOB NOT NULL,
		attention_mask BLOB NOT NULL,
		time_stamp DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create examples table: %w", err)
	}
	return nil
}

// Append writes one example as a new row.
func (s *SQLStore) Append(e *corpus.Example) error {
	return s.AppendBatch([]*corpus.Example{e})
}

// AppendBatch writes a collection of examples in a single transaction.
func (s *SQLStore) AppendBatch(examples []*corpus.Example) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be a no-op if transaction is committed

	stmt, err := tx.Prepare(`INSERT INTO examples (id, seq, input_ids, segment_ids, attention_mask)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM examples), ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range examples {
		if err := e.Validate(); err != nil {
			return err
		}
		_, err := stmt.Exec(
			uuid.NewString(),
			packList(e.InputIDs),
			packList(e.SegmentIDs),
			packList(e.AttentionMask),
		)
		if err != nil {
			return fmt.Errorf("failed to insert example: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	slog.Debug("appended examples to record store", "count", len(examples))
	return nil
}

// Iterate returns an iterator over all stored examples in insertion order.
func (s *SQLStore) Iterate() (Iterator, error) {
	it := &sqlIterator{db: s.db}
	if err := it.Reset(); err != nil {
		return nil, err
	}
	return it, nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

type sqlIterator struct {
	db   *sql.DB
	rows *sql.Rows
}

func (it *sqlIterator) Next() (*corpus.Example, error) {
	if !it.rows.Next() {
		if err := it.rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to scan record rows: %w", err)
		}
		return nil, io.EOF
	}
	var inputIDs, segmentIDs, attentionMask []byte
	if err := it.rows.Scan(&inputIDs, &segmentIDs, &attentionMask); err != nil {
		return nil, fmt.Errorf("failed to scan record row: %w", err)
	}
	rec := Record{}
	for field, blob := range map[string][]byte{
		FieldInputIDs:      inputIDs,
		FieldSegmentIDs:    segmentIDs,
		FieldAttentionMask: attentionMask,
	} {
		values, rest, err := readInt64List(blob)
		if err != nil || len(rest) != 0 {
			return nil, &SchemaError{Field: field, Reason: "corrupt column payload"}
		}
		rec[field] = values
	}
	return Decode(rec)
}

func (it *sqlIterator) Reset() error {
	if it.rows != nil {
		it.rows.Close()
	}
	rows, err := it.db.Query(`SELECT input_ids, segment_ids, attention_mask FROM examples ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("failed to query examples: %w", err)
	}
	it.rows = rows
	return nil
}

func (it *sqlIterator) Close() error {
	if it.rows != nil {
		return it.rows.Close()
	}
	return nil
}

func packList(values []int64) []byte {
	return appendInt64List(nil, values)
}
