// Package data extracts normalized master-data tables (cards, skills,
// factors) from the master database into JSON files.
package data

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/uma-tools/umadump/internal/config"
	"github.com/uma-tools/umadump/internal/db"
	"github.com/uma-tools/umadump/internal/fileutil"
)

// Table is one extracted JSON output: a filename and the records
// that go into it.
type Table struct {
	Filename string
	Records  any
}

// Extractor produces one or more tables from the master database.
type Extractor func(master *sql.DB) ([]Table, error)

// Extractors maps extraction kinds to their implementations.
var Extractors = map[string]Extractor{
	"characard":         charaCards,
	"supportcard":       supportCards,
	"supportcardidonly": supportCardIDs,
	"factor":            factors,
	"skill":             skills,
}

// Kinds returns the registered extraction kinds, sorted.
func Kinds() []string {
	kinds := make([]string, 0, len(Extractors))
	for kind := range Extractors {
		kinds = append(kinds, kind)
	}

	sort.Strings(kinds)

	return kinds
}

// Run extracts the requested kinds, or all of them when none are
// given, writing each table under <storage>/data. Unknown kinds are
// logged and skipped; database failures are fatal.
func Run(cfg *config.Config, log *zap.SugaredLogger, session *db.Session) error {
	master, err := session.Master()
	if err != nil {
		return err
	}

	kinds := cfg.Kinds
	if len(kinds) == 0 {
		kinds = Kinds()
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating %q: %w", dataDir, err)
	}

	for _, kind := range kinds {
		extractor, ok := Extractors[kind]
		if !ok {
			log.Errorf("invalid kind: %s", kind)

			continue
		}

		tables, err := extractor(master)
		if err != nil {
			return fmt.Errorf("extracting %q: %w", kind, err)
		}

		for _, table := range tables {
			out, err := json.MarshalIndent(table.Records, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding %q: %w", table.Filename, err)
			}

			target := filepath.Join(dataDir, table.Filename)
			if err := fileutil.WriteAtomic(target, append(out, '\n')); err != nil {
				return err
			}

			log.Infof("extracted %q data to %q", kind, target)
		}
	}

	return nil
}
