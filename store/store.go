// Package store reads the source note database: a Core-Data-style SQLite
// file whose ZICCLOUDSYNCINGOBJECT table holds notes, folders and
// attachments, and whose ZICNOTEDATA table holds the compressed note blobs.
//
// The database is always opened read-only; the store never writes to the
// source. The pure-Go sqlite driver keeps the binary cgo-free.
//
// Usage:
//
//	st, err := store.Open("NoteStore.sqlite")
//	if err != nil { ... }
//	defer st.Close()
//	notes, err := st.ListNotes(ctx)
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound reports a lookup for an object the database does not hold.
var ErrNotFound = errors.New("store: not found")

// Core Data stores timestamps as seconds since 2001-01-01 UTC.
const coreDataEpoch = 978307200

type config struct {
	driver   string
	readOnly bool
	ping     bool
	schemas  []string
}

func defaults() config {
	return config{
		driver:   "sqlite",
		readOnly: true,
		ping:     true,
	}
}

// Option customises Open behaviour.
type Option func(*config)

// WithDriver sets the database/sql driver name. Default: "sqlite".
func WithDriver(name string) Option { return func(c *config) { c.driver = name } }

// WithSchema executes schema SQL after opening. Test fixtures use this to
// build a miniature note database.
func WithSchema(schema string) Option {
	return func(c *config) {
		c.readOnly = false
		c.schemas = append(c.schemas, schema)
	}
}

// WithoutPing skips the connectivity check after opening.
func WithoutPing() Option { return func(c *config) { c.ping = false } }

// Store is a read-only handle on a note database.
type Store struct {
	db *sql.DB
}

// Open opens the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := defaults()
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := sql.Open(cfg.driver, path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	for _, schema := range cfg.schemas {
		if _, err := db.Exec(schema); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: apply schema: %w", err)
		}
	}
	if cfg.readOnly {
		// query_only is a per-connection pragma; pin the pool to one
		// connection so it holds for every query.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA query_only = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: set query_only: %w", err)
		}
	}
	if cfg.ping {
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: ping %s: %w", path, err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Note is one note row: identity, placement, and the compressed blob
// holding its rich text.
type Note struct {
	PK         int64
	Identifier string
	Title      string
	Folder     string
	Modified   time.Time
	Data       []byte
}

// Attachment is one attachment row. MergeableData is the compressed archive
// blob of table attachments; it is empty for file-backed attachments.
type Attachment struct {
	Identifier    string
	TypeUTI       string
	Filename      string
	MergeableData []byte
}

const listNotesQuery = `
SELECT n.Z_PK, n.ZIDENTIFIER, IFNULL(n.ZTITLE1, ''), IFNULL(f.ZTITLE2, ''),
       IFNULL(n.ZMODIFICATIONDATE1, 0), d.ZDATA
FROM ZICCLOUDSYNCINGOBJECT n
JOIN ZICNOTEDATA d ON d.Z_PK = n.ZNOTEDATA
LEFT JOIN ZICCLOUDSYNCINGOBJECT f ON f.Z_PK = n.ZFOLDER
WHERE d.ZDATA IS NOT NULL
  AND IFNULL(n.ZMARKEDFORDELETION, 0) = 0
ORDER BY n.Z_PK`

// ListNotes returns every live note with its compressed blob, ordered by
// primary key. Notes marked for deletion are skipped.
func (s *Store) ListNotes(ctx context.Context) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx, listNotesQuery)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		var modified float64
		if err := rows.Scan(&n.PK, &n.Identifier, &n.Title, &n.Folder, &modified, &n.Data); err != nil {
			return nil, fmt.Errorf("store: scan note: %w", err)
		}
		n.Modified = coreDataTime(modified)
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	return notes, nil
}

const attachmentQuery = `
SELECT ZIDENTIFIER, IFNULL(ZTYPEUTI, ''), IFNULL(ZFILENAME, ''), ZMERGEABLEDATA1
FROM ZICCLOUDSYNCINGOBJECT
WHERE ZIDENTIFIER = ?`

// Attachment looks up an attachment by its identifier.
func (s *Store) Attachment(ctx context.Context, identifier string) (*Attachment, error) {
	var a Attachment
	var data sql.Null[[]byte]
	err := s.db.QueryRowContext(ctx, attachmentQuery, identifier).
		Scan(&a.Identifier, &a.TypeUTI, &a.Filename, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: attachment %s", ErrNotFound, identifier)
	}
	if err != nil {
		return nil, fmt.Errorf("store: attachment %s: %w", identifier, err)
	}
	if data.Valid {
		a.MergeableData = data.V
	}
	return &a, nil
}

// NoteData fetches the compressed blob of a single note by its primary key.
func (s *Store) NoteData(ctx context.Context, pk int64) ([]byte, error) {
	const q = `
SELECT d.ZDATA
FROM ZICCLOUDSYNCINGOBJECT n
JOIN ZICNOTEDATA d ON d.Z_PK = n.ZNOTEDATA
WHERE n.Z_PK = ? AND d.ZDATA IS NOT NULL`
	var data []byte
	err := s.db.QueryRowContext(ctx, q, pk).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: note %d", ErrNotFound, pk)
	}
	if err != nil {
		return nil, fmt.Errorf("store: note %d: %w", pk, err)
	}
	return data, nil
}

// MergeableData fetches the mergeable-data blob of an attachment, typically
// the replicated object graph of a table.
func (s *Store) MergeableData(ctx context.Context, identifier string) ([]byte, error) {
	a, err := s.Attachment(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if len(a.MergeableData) == 0 {
		return nil, fmt.Errorf("%w: attachment %s has no mergeable data", ErrNotFound, identifier)
	}
	return a.MergeableData, nil
}

func coreDataTime(sec float64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(coreDataEpoch+int64(sec), 0).UTC()
}
