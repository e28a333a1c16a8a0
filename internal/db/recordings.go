package db

import (
	"database/sql"
	"time"

	"github.com/uptrace/bun"
)

// Recording represents a stored screen recording: one row of metadata
// describing one binary file in the content store. Rows are immutable once
// inserted; the only mutation is deletion.
type Recording struct {
	bun.BaseModel `bun:"table:recordings"`

	ID        int64     `json:"id" bun:"id,pk,autoincrement"`
	Filename  string    `json:"filename" bun:"filename,notnull"`
	Filepath  string    `json:"filepath" bun:"filepath,notnull"`
	Filesize  int64     `json:"filesize" bun:"filesize,notnull"`
	Duration  int64     `json:"duration,omitempty" bun:"duration"`
	CreatedAt time.Time `json:"createdAt" bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// CreateRecording inserts a new recording row. The assigned ID is written
// back to rec. IDs are monotonically increasing and never reused, even after
// deletion (AUTOINCREMENT semantics).
func (db *DB) CreateRecording(rec *Recording) error {
	_, err := db.bun.NewInsert().Model(rec).Exec(ctx())
	return err
}

// GetRecording returns a recording by ID, or nil if no such row exists.
func (db *DB) GetRecording(id int64) (*Recording, error) {
	var rec Recording
	err := db.bun.NewSelect().Model(&rec).Where("id = ?", id).Scan(ctx())
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRecordings returns all recordings ordered by creation time, newest first.
func (db *DB) ListRecordings() ([]Recording, error) {
	var recs []Recording
	err := db.bun.NewSelect().Model(&recs).
		OrderExpr("created_at DESC").
		Scan(ctx())
	return recs, err
}

// CountRecordings returns the number of recording rows.
func (db *DB) CountRecordings() (int, error) {
	return db.bun.NewSelect().Model((*Recording)(nil)).Count(ctx())
}

// TotalRecordingBytes returns the combined size of all recordings.
func (db *DB) TotalRecordingBytes() (int64, error) {
	var total int64
	err := db.bun.NewSelect().Model((*Recording)(nil)).
		ColumnExpr("COALESCE(SUM(filesize), 0)").
		Scan(ctx(), &total)
	return total, err
}

// DeleteRecording removes a recording row by ID. Returns sql.ErrNoRows if no
// row matched.
func (db *DB) DeleteRecording(id int64) error {
	result, err := db.bun.NewDelete().Model((*Recording)(nil)).Where("id = ?", id).Exec(ctx())
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
