// Package db opens the client's metadata and master databases and
// runs the queries the dump and extract pipelines need.
//
// A Session replaces the lazily-initialized global handles of earlier
// revisions: it is constructed once per run, opens each database on
// first use, and is closed by the caller.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"go.uber.org/multierr"

	"github.com/uma-tools/umadump/internal/abcrypt"
	"github.com/uma-tools/umadump/internal/config"
)

// AssetRow is one record of the metadata table a.
type AssetRow struct {
	// Path is the bundle's relative target path.
	Path string
	// Hash is the content hash addressing the encrypted blob on disk.
	Hash string
	// Kind is the asset category (column m).
	Kind string
	// Key is the record key the bundle keystream is derived from. The
	// column is signed in SQLite; conversion truncates to 64 bits.
	Key uint64
}

// Session owns the database handles for one run.
type Session struct {
	metaPath   string
	masterPath string

	meta   *sql.DB
	master *sql.DB
}

// NewSession resolves database locations from the configuration.
// Explicitly configured paths win; missing ones fall back to the
// conventional locations inside the appdata folder.
func NewSession(cfg *config.Config) *Session {
	return &Session{
		metaPath:   resolvePath(cfg.Meta, filepath.Join(cfg.AppData, "meta")),
		masterPath: resolvePath(cfg.Master, filepath.Join(cfg.AppData, "master", "master.mdb")),
	}
}

// Close releases both handles. Safe to call when nothing was opened.
func (s *Session) Close() error {
	var err error

	if s.meta != nil {
		err = multierr.Append(err, s.meta.Close())
		s.meta = nil
	}

	if s.master != nil {
		err = multierr.Append(err, s.master.Close())
		s.master = nil
	}

	return err
}

// Meta returns the metadata database, opening it on first call. The
// handle is pinned to a single connection so the hexkey pragma issued
// here covers every later query.
//
// The pragma only takes effect when the driver is linked against a
// cipher-capable SQLite such as sqlite3mc (build with the libsqlite3
// tag against that library). A stock build ignores it and every query
// on an encrypted file fails with "file is not a database".
func (s *Session) Meta() (*sql.DB, error) {
	if s.meta != nil {
		return s.meta, nil
	}

	if _, err := os.Stat(s.metaPath); err != nil {
		return nil, fmt.Errorf("meta DB path does not exist: %q: %w", s.metaPath, err)
	}

	db, err := sql.Open("sqlite3", s.metaPath)
	if err != nil {
		return nil, fmt.Errorf("opening meta DB: %w", err)
	}

	db.SetMaxOpenConns(1)

	key, err := abcrypt.MetaDBKey()
	if err != nil {
		db.Close()

		return nil, fmt.Errorf("deriving meta DB key: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA hexkey = '%s'", key)); err != nil {
		db.Close()

		return nil, fmt.Errorf("keying meta DB: %w", err)
	}

	s.meta = db

	return s.meta, nil
}

// Master returns the master database, opening it on first call.
func (s *Session) Master() (*sql.DB, error) {
	if s.master != nil {
		return s.master, nil
	}

	if _, err := os.Stat(s.masterPath); err != nil {
		return nil, fmt.Errorf("master DB path does not exist: %q: %w", s.masterPath, err)
	}

	db, err := sql.Open("sqlite3", s.masterPath)
	if err != nil {
		return nil, fmt.Errorf("opening master DB: %w", err)
	}

	db.SetMaxOpenConns(1)
	s.master = db

	return s.master, nil
}

// AssetRows returns metadata rows in table order, optionally filtered
// to the given kinds and offset past the first skip rows.
func (s *Session) AssetRows(kinds []string, skip int) ([]AssetRow, error) {
	db, err := s.Meta()
	if err != nil {
		return nil, err
	}

	query := "SELECT n, h, m, e FROM a"

	var args []any

	if len(kinds) > 0 {
		query += " WHERE m IN (?" + strings.Repeat(",?", len(kinds)-1) + ")"
		for _, k := range kinds {
			args = append(args, k)
		}
	}

	query += " ORDER BY i"

	if skip > 0 {
		// OFFSET requires a LIMIT clause in SQLite; -1 means unbounded.
		query += " LIMIT -1 OFFSET ?"
		args = append(args, skip)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying asset rows: %w", err)
	}
	defer rows.Close()

	var out []AssetRow

	for rows.Next() {
		var (
			row AssetRow
			key int64
		)

		if err := rows.Scan(&row.Path, &row.Hash, &row.Kind, &key); err != nil {
			return nil, fmt.Errorf("scanning asset row: %w", err)
		}

		row.Key = uint64(key)
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating asset rows: %w", err)
	}

	return out, nil
}

// Kinds returns the distinct asset categories present in the
// metadata table.
func (s *Session) Kinds() ([]string, error) {
	db, err := s.Meta()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT DISTINCT m FROM a ORDER BY m")
	if err != nil {
		return nil, fmt.Errorf("querying kinds: %w", err)
	}
	defer rows.Close()

	var kinds []string

	for rows.Next() {
		var kind string
		if err := rows.Scan(&kind); err != nil {
			return nil, fmt.Errorf("scanning kind: %w", err)
		}

		kinds = append(kinds, kind)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating kinds: %w", err)
	}

	return kinds, nil
}

// resolvePath prefers an explicitly configured path that exists on
// disk, falling back to the conventional location otherwise.
func resolvePath(configured, fallback string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	return fallback
}
