package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uma-tools/umadump/internal/config"
)

func TestResolvePathPrefersExistingConfigured(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configured := filepath.Join(dir, "meta")
	require.NoError(t, os.WriteFile(configured, []byte("x"), 0o644))

	assert.Equal(t, configured, resolvePath(configured, "/fallback/meta"))
}

func TestResolvePathFallsBack(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/fallback/meta", resolvePath("", "/fallback/meta"))
	assert.Equal(t, "/fallback/meta", resolvePath(filepath.Join(t.TempDir(), "missing"), "/fallback/meta"))
}

func TestNewSessionDefaultLocations(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{AppData: "/appdata"}
	s := NewSession(cfg)

	assert.Equal(t, filepath.Join("/appdata", "meta"), s.metaPath)
	assert.Equal(t, filepath.Join("/appdata", "master", "master.mdb"), s.masterPath)
}

// newTestMetaDB creates an unencrypted metadata table on disk. The
// hexkey pragma is a no-op on plain files, so Session opens it like
// any other.
func newTestMetaDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "meta")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE a (i INTEGER PRIMARY KEY, n TEXT, h TEXT, m TEXT, e INTEGER)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO a (i, n, h, m, e) VALUES
		(1, 'chara/chr1001', 'aa01', 'chara', 7),
		(2, 'bg/bg001', 'bb02', 'bg', -1),
		(3, 'chara/chr1002', 'cc03', 'chara', 9)`)
	require.NoError(t, err)

	return path
}

func TestAssetRows(t *testing.T) {
	t.Parallel()

	s := NewSession(&config.Config{AppData: "/nowhere", Meta: newTestMetaDB(t)})
	defer s.Close()

	rows, err := s.AssetRows(nil, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "chara/chr1001", rows[0].Path)
	assert.Equal(t, "aa01", rows[0].Hash)
	assert.Equal(t, "chara", rows[0].Kind)
	assert.Equal(t, uint64(7), rows[0].Key)

	// Negative record keys truncate to the low 64 bits.
	assert.Equal(t, ^uint64(0), rows[1].Key)
}

func TestAssetRowsKindFilter(t *testing.T) {
	t.Parallel()

	s := NewSession(&config.Config{AppData: "/nowhere", Meta: newTestMetaDB(t)})
	defer s.Close()

	rows, err := s.AssetRows([]string{"chara"}, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "chara/chr1001", rows[0].Path)
	assert.Equal(t, "chara/chr1002", rows[1].Path)

	rows, err = s.AssetRows([]string{"sound"}, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAssetRowsSkip(t *testing.T) {
	t.Parallel()

	s := NewSession(&config.Config{AppData: "/nowhere", Meta: newTestMetaDB(t)})
	defer s.Close()

	rows, err := s.AssetRows(nil, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "chara/chr1002", rows[0].Path)
}

func TestKinds(t *testing.T) {
	t.Parallel()

	s := NewSession(&config.Config{AppData: "/nowhere", Meta: newTestMetaDB(t)})
	defer s.Close()

	kinds, err := s.Kinds()
	require.NoError(t, err)
	assert.Equal(t, []string{"bg", "chara"}, kinds)
}

func TestMetaMissingPath(t *testing.T) {
	t.Parallel()

	s := NewSession(&config.Config{AppData: t.TempDir()})
	defer s.Close()

	_, err := s.Meta()
	assert.ErrorContains(t, err, "meta DB path does not exist")
}
