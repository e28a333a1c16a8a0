package recordings

import "io"

// RecordingStore abstracts video recording file storage.
type RecordingStore interface {
	// Save writes a recording file from the reader and returns the storage path.
	Save(filename string, r io.Reader) (storagePath string, err error)

	// Get returns a ReadCloser over the inclusive byte span [start, end] of
	// the recording file at the given storage path.
	Get(storagePath string, start, end int64) (io.ReadCloser, error)

	// Stat returns the size in bytes of the recording file at the given
	// storage path. A missing file yields an error wrapping fs.ErrNotExist.
	Stat(storagePath string) (int64, error)

	// Delete removes the recording file at the given storage path. Deleting
	// an already-missing file is not an error.
	Delete(storagePath string) error
}
