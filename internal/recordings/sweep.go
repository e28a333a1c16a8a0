package recordings

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/ManojkumarBalini/screenrec/internal/db"
)

// orphanGrace is how old an unreferenced file must be before the sweeper
// removes it. It keeps in-flight uploads, whose file lands before the
// metadata row, from being swept mid-request.
const orphanGrace = 5 * time.Minute

// Sweeper reconciles the metadata table with stored files. Rows whose file
// has vanished are removed, and files no row references are deleted once
// they are old enough. root is the local content directory scanned for
// orphans; when empty (remote stores) only dangling rows are reconciled.
type Sweeper struct {
	db       *db.DB
	store    RecordingStore
	root     string
	interval time.Duration
	stopCh   chan struct{}
}

// NewSweeper creates a Sweeper. With interval 0 the sweep runs once at Start
// and never again.
func NewSweeper(database *db.DB, store RecordingStore, root string, interval time.Duration) *Sweeper {
	return &Sweeper{
		db:       database,
		store:    store,
		root:     root,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs one sweep synchronously, then launches the periodic loop when
// an interval is configured.
func (s *Sweeper) Start() {
	s.run()
	if s.interval > 0 {
		go s.loop()
	}
}

// Stop signals the sweep goroutine to exit.
func (s *Sweeper) Stop() {
	close(s.stopCh)
}

func (s *Sweeper) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.run()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Sweeper) run() {
	recs, err := s.db.ListRecordings()
	if err != nil {
		slog.Warn("Recording sweep: failed to list recordings", "error", err)
		return
	}

	live := make(map[string]struct{}, len(recs))
	for _, rec := range recs {
		live[rec.Filepath] = struct{}{}
	}

	dangling := 0
	for _, rec := range recs {
		_, err := s.store.Stat(rec.Filepath)
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Recording sweep: failed to stat file",
				"recording_id", rec.ID,
				"path", rec.Filepath,
				"error", err)
			continue
		}
		if err := s.db.DeleteRecording(rec.ID); err != nil {
			slog.Warn("Recording sweep: failed to delete dangling row",
				"recording_id", rec.ID,
				"error", err)
			continue
		}
		dangling++
	}

	orphans := 0
	if s.root != "" {
		orphans = s.sweepOrphans(live)
	}

	if dangling > 0 || orphans > 0 {
		slog.Info("Recording sweep: reconciled",
			"dangling_rows", dangling,
			"orphan_files", orphans)
	}
}

// sweepOrphans removes recording files under root that no metadata row
// references and that are older than orphanGrace. It returns the number of
// files removed.
func (s *Sweeper) sweepOrphans(live map[string]struct{}) int {
	removed := 0
	cutoff := time.Now().Add(-orphanGrace)

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), recordingExt) {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return nil
		}
		if _, ok := live[rel]; ok {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.ModTime().After(cutoff) {
			return nil
		}

		if err := s.store.Delete(rel); err != nil {
			slog.Warn("Recording sweep: failed to remove orphan file", "path", rel, "error", err)
			return nil
		}
		removed++
		return nil
	})
	if err != nil {
		slog.Warn("Recording sweep: orphan scan failed", "error", err)
	}

	return removed
}
