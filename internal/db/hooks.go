package db

import (
	"context"

	"github.com/uptrace/bun"
)

// --- Recording hooks ---

var _ bun.BeforeAppendModelHook = (*Recording)(nil)

// BeforeAppendModel normalizes CreatedAt to UTC before insert. created_at is
// the sole sort key for listings, and SQLite compares text timestamps
// lexicographically, so mixed timezone offsets would corrupt the ordering.
func (r *Recording) BeforeAppendModel(_ context.Context, query bun.Query) error {
	if !r.CreatedAt.IsZero() {
		r.CreatedAt = r.CreatedAt.UTC()
	}
	return nil
}
