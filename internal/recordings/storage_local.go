package recordings

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore implements RecordingStore using the local filesystem.
// Files are stored at {baseDir}/{year}/{month}/{filename}.
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates a LocalStore that writes to the given base directory.
func NewLocalStore(baseDir string) *LocalStore {
	return &LocalStore{baseDir: baseDir}
}

// resolve validates that storagePath stays within baseDir and returns the
// absolute path it points to.
func (s *LocalStore) resolve(storagePath string) (string, error) {
	fullPath := filepath.Clean(filepath.Join(s.baseDir, storagePath))
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("invalid base dir: %w", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return "", fmt.Errorf("path traversal detected: %s", storagePath)
	}
	return absPath, nil
}

// Save writes a recording file to disk and returns the relative storage path.
func (s *LocalStore) Save(filename string, r io.Reader) (string, error) {
	now := time.Now()
	cleanName := filepath.Base(filename) // strip any directory components
	relPath := filepath.Join(fmt.Sprintf("%d", now.Year()), fmt.Sprintf("%02d", now.Month()), cleanName)

	absPath, err := s.resolve(relPath)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	f, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", absPath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(absPath)
		return "", fmt.Errorf("failed to write recording: %w", err)
	}

	return relPath, nil
}

// Get opens the recording file and returns a reader covering the inclusive
// byte span [start, end].
func (s *LocalStore) Get(storagePath string, start, end int64) (io.ReadCloser, error) {
	absPath, err := s.resolve(storagePath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}
	if start > 0 {
		if _, err := f.Seek(start, io.SeekStart); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to seek recording: %w", err)
		}
	}

	return &sectionReadCloser{r: io.LimitReader(f, end-start+1), f: f}, nil
}

// Stat returns the size in bytes of the recording file at the given storage path.
func (s *LocalStore) Stat(storagePath string) (int64, error) {
	absPath, err := s.resolve(storagePath)
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return 0, fmt.Errorf("failed to stat recording: %w", err)
	}
	return info.Size(), nil
}

// Delete removes the recording file at the given storage path.
func (s *LocalStore) Delete(storagePath string) error {
	absPath, err := s.resolve(storagePath)
	if err != nil {
		return err
	}

	if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete recording: %w", err)
	}
	return nil
}

// sectionReadCloser couples a length-limited reader with the underlying file
// so the caller can close it.
type sectionReadCloser struct {
	r io.Reader
	f *os.File
}

func (s *sectionReadCloser) Read(p []byte) (int, error) { return s.r.Read(p) }
func (s *sectionReadCloser) Close() error               { return s.f.Close() }
