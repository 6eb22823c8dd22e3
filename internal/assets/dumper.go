// Package assets implements the bundle dump pipeline: walk the
// metadata rows, decrypt each blob, unpack its textures, and write
// the images under the storage folder.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/uma-tools/umadump/internal/abcrypt"
	"github.com/uma-tools/umadump/internal/bundle"
	"github.com/uma-tools/umadump/internal/config"
	"github.com/uma-tools/umadump/internal/db"
	"github.com/uma-tools/umadump/pkg/pathmatch"
)

// Dumper runs the asset dump for one session.
type Dumper struct {
	cfg     *config.Config
	log     *zap.SugaredLogger
	session *db.Session

	include *pathmatch.Matcher
	exclude *pathmatch.Matcher
}

// NewDumper compiles the path filters and wires the collaborators.
func NewDumper(cfg *config.Config, log *zap.SugaredLogger, session *db.Session) (*Dumper, error) {
	include, err := pathmatch.New(cfg.Include)
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}

	exclude, err := pathmatch.New(cfg.Exclude)
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}

	return &Dumper{
		cfg:     cfg,
		log:     log,
		session: session,
		include: include,
		exclude: exclude,
	}, nil
}

// outcome classifies what happened to one metadata row.
type outcome int

const (
	// outcomeDumped: bundle decrypted and at least one image written.
	outcomeDumped outcome = iota
	// outcomeSkipped: row counted as skipped (missing blob, existing
	// target, decrypt or parse failure).
	outcomeSkipped
	// outcomeIgnored: row filtered out or carrying nothing to write.
	outcomeIgnored
)

// Run processes every selected metadata row sequentially. Per-row
// failures are logged and counted, never fatal.
func (d *Dumper) Run() error {
	if _, err := os.Stat(d.cfg.AppData); err != nil {
		return fmt.Errorf("appdata folder does not exist: %q: %w", d.cfg.AppData, err)
	}

	rows, err := d.session.AssetRows(d.cfg.Kinds, d.cfg.SkipRows)
	if err != nil {
		return err
	}

	start := time.Now()
	bar := d.progress(len(rows))

	var dumped, skipped, totalSize int64

	for _, row := range rows {
		bar.Add(1)

		res, size := d.dumpRow(row)
		switch res {
		case outcomeDumped:
			dumped++
			totalSize += size
		case outcomeSkipped:
			skipped++
		case outcomeIgnored:
		}
	}

	d.log.Infof("finished processing %d DB rows (skipped %d)", len(rows), skipped)

	if d.cfg.Stats {
		printStats(os.Stderr, len(rows), dumped, skipped, totalSize, time.Since(start))
	}

	return nil
}

// dumpRow handles one metadata row end to end.
func (d *Dumper) dumpRow(row db.AssetRow) (outcome, int64) {
	if strings.HasPrefix(row.Path, "/") {
		return outcomeIgnored, 0
	}

	if !d.include.Empty() && !d.include.Match(row.Path) {
		return outcomeIgnored, 0
	}

	if d.exclude.Match(row.Path) {
		return outcomeIgnored, 0
	}

	dumpPath := filepath.Join(d.cfg.AssetsDir(), filepath.FromSlash(row.Path))

	if d.cfg.SkipExisting {
		if _, err := os.Stat(dumpPath); err == nil {
			return outcomeSkipped, 0
		}
	}

	if len(row.Hash) < 2 {
		d.log.Errorf("malformed content hash %q for %s", row.Hash, row.Path)

		return outcomeSkipped, 0
	}

	blobPath := filepath.Join(d.cfg.DatDir(), row.Hash[:2], row.Hash)

	data, err := os.ReadFile(blobPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return outcomeSkipped, 0
		}

		d.log.Errorf("failed to read %s: %v", row.Hash, err)

		return outcomeSkipped, 0
	}

	keys := abcrypt.Keystream(abcrypt.ABKey, row.Key)

	decrypted, err := abcrypt.Decrypt(data, keys)
	if err != nil {
		d.log.Errorf("failed to decrypt %s: %v", row.Hash, err)

		return outcomeSkipped, 0
	}

	pack, err := bundle.Parse(decrypted)
	if err != nil {
		d.log.Errorf("failed to load %s: %v", row.Hash, err)

		return outcomeSkipped, 0
	}

	images := d.composeImages(pack, row)
	if len(images) == 0 {
		return outcomeIgnored, 0
	}

	if err := os.MkdirAll(dumpPath, 0o755); err != nil {
		d.log.Errorf("failed to create %s: %v", dumpPath, err)

		return outcomeSkipped, 0
	}

	size, err := d.writeImages(dumpPath, row.Path, images)
	if err != nil {
		d.log.Errorf("failed to dump %s: %v", row.Path, err)

		return outcomeSkipped, 0
	}

	return outcomeDumped, size
}

func (d *Dumper) progress(total int) *progressbar.ProgressBar {
	if d.cfg.Quiet || d.cfg.LogFile != "" {
		return progressbar.DefaultSilent(int64(total))
	}

	return progressbar.Default(int64(total), "processing DB rows")
}

func printStats(w *os.File, rows int, dumped, skipped, totalSize int64, duration time.Duration) {
	fmt.Fprintf(w, "\nStats\n")
	fmt.Fprintf(w, "  Rows:     %d\n", rows)
	fmt.Fprintf(w, "  Dumped:   %d\n", dumped)
	fmt.Fprintf(w, "  Skipped:  %d\n", skipped)
	fmt.Fprintf(w, "  Size:     %s\n", humanize.IBytes(uint64(max(0, totalSize))))
	fmt.Fprintf(w, "  Duration: %s\n", duration.Round(time.Millisecond))
}
