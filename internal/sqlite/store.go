// Package sqlite implements the durable link store on an embedded SQLite
// database (modernc.org/sqlite, no cgo).
// See docs/ARCHITECTURE.md § Storage Backends.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/linkforge/doublets/pkg/links"
)

var _ links.Store = (*Store)(nil)

// DBFileName is the database file created inside the data directory.
const DBFileName = "doublets.db"

// Store is a sqlite-backed link store. Mutations run as single-statement
// transactions, which gives per-id linearization; id allocation rides on the
// AUTOINCREMENT rowid, so concurrent creates never collide and deleted ids
// are never reissued.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

// Open creates dataDir if needed, opens (or creates) the database inside it,
// and applies the schema.
func Open(dataDir string) (*Store, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", dbPath, links.ErrStoreUnavailable, err)
	}

	// Serialize writers at the driver level; sqlite supports one writer.
	db.SetMaxOpenConns(1)

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w: %v", links.ErrStoreUnavailable, err)
		}
	}

	return &Store{db: db}, nil
}

// Create inserts a new pair and returns the link with its allocated id.
func (s *Store) Create(source, target links.LinkID) (links.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return links.Link{}, fmt.Errorf("create: %w", links.ErrStoreUnavailable)
	}

	res, err := s.db.Exec(
		"INSERT INTO links (source, target) VALUES (?, ?)",
		int64(source), int64(target),
	)
	if err != nil {
		return links.Link{}, fmt.Errorf("inserting link: %w: %v", links.ErrStoreUnavailable, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return links.Link{}, fmt.Errorf("reading allocated id: %w: %v", links.ErrStoreUnavailable, err)
	}

	return links.Link{ID: links.LinkID(id), Source: source, Target: target}, nil
}

// Read returns the link with the given id.
func (s *Store) Read(id links.LinkID) (links.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return links.Link{}, fmt.Errorf("read: %w", links.ErrStoreUnavailable)
	}

	var source, target int64
	err := s.db.QueryRow(
		"SELECT source, target FROM links WHERE link_id = ?", int64(id),
	).Scan(&source, &target)
	if err == sql.ErrNoRows {
		return links.Link{}, fmt.Errorf("read %d: %w", id, links.ErrNotFound)
	}
	if err != nil {
		return links.Link{}, fmt.Errorf("reading link %d: %w: %v", id, links.ErrStoreUnavailable, err)
	}

	return links.Link{ID: id, Source: links.LinkID(source), Target: links.LinkID(target)}, nil
}

// Scan visits links in creation order (rowid order). Rows are materialized
// before visiting so the single connection is free during callbacks; a
// visitor may issue store mutations without deadlocking on the row cursor.
func (s *Store) Scan(visit func(links.Link) bool) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return fmt.Errorf("scan: %w", links.ErrStoreUnavailable)
	}

	rows, err := s.db.Query("SELECT link_id, source, target FROM links ORDER BY link_id")
	if err != nil {
		s.mu.RUnlock()
		return fmt.Errorf("scanning links: %w: %v", links.ErrStoreUnavailable, err)
	}

	var all []links.Link
	for rows.Next() {
		var id, source, target int64
		if err := rows.Scan(&id, &source, &target); err != nil {
			rows.Close()
			s.mu.RUnlock()
			return fmt.Errorf("hydrating link: %w: %v", links.ErrStoreUnavailable, err)
		}
		all = append(all, links.Link{ID: links.LinkID(id), Source: links.LinkID(source), Target: links.LinkID(target)})
	}
	closeErr := rows.Close()
	if err := rows.Err(); err != nil {
		s.mu.RUnlock()
		return fmt.Errorf("iterating links: %w: %v", links.ErrStoreUnavailable, err)
	}
	if closeErr != nil {
		s.mu.RUnlock()
		return fmt.Errorf("iterating links: %w: %v", links.ErrStoreUnavailable, closeErr)
	}
	s.mu.RUnlock()

	for _, l := range all {
		if !visit(l) {
			return nil
		}
	}
	return nil
}

// Update overwrites source and target in place; the id is fixed.
func (s *Store) Update(id, source, target links.LinkID) (links.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return links.Link{}, fmt.Errorf("update: %w", links.ErrStoreUnavailable)
	}

	res, err := s.db.Exec(
		"UPDATE links SET source = ?, target = ? WHERE link_id = ?",
		int64(source), int64(target), int64(id),
	)
	if err != nil {
		return links.Link{}, fmt.Errorf("updating link %d: %w: %v", id, links.ErrStoreUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return links.Link{}, fmt.Errorf("updating link %d: %w: %v", id, links.ErrStoreUnavailable, err)
	}
	if affected == 0 {
		return links.Link{}, fmt.Errorf("update %d: %w", id, links.ErrNotFound)
	}

	return links.Link{ID: id, Source: source, Target: target}, nil
}

// Delete removes the link. AUTOINCREMENT keeps the id burned.
func (s *Store) Delete(id links.LinkID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return fmt.Errorf("delete: %w", links.ErrStoreUnavailable)
	}

	res, err := s.db.Exec("DELETE FROM links WHERE link_id = ?", int64(id))
	if err != nil {
		return fmt.Errorf("deleting link %d: %w: %v", id, links.ErrStoreUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting link %d: %w: %v", id, links.ErrStoreUnavailable, err)
	}
	if affected == 0 {
		return fmt.Errorf("delete %d: %w", id, links.ErrNotFound)
	}
	return nil
}

// Close releases the database. Idempotent; later operations fail with
// ErrStoreUnavailable.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
