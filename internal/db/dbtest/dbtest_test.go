package dbtest

import (
	"testing"

	"github.com/ManojkumarBalini/screenrec/internal/db"
)

func TestNewTestDB_ReturnsWorkingDatabase(t *testing.T) {
	database := NewTestDB(t)

	if err := database.Ping(); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	// Migrations must have run: the recordings table should accept inserts.
	rec := &db.Recording{
		Filename: "recording-1700000000000-test.webm",
		Filepath: "2023/11/recording-1700000000000-test.webm",
		Filesize: 1024,
	}
	if err := database.CreateRecording(rec); err != nil {
		t.Fatalf("CreateRecording() error = %v", err)
	}
	if rec.ID == 0 {
		t.Error("CreateRecording() did not assign an ID")
	}
}

func TestNewTestDB_IsolatedBetweenTests(t *testing.T) {
	db1 := NewTestDB(t)
	db2 := NewTestDB(t)

	rec := &db.Recording{
		Filename: "recording-1700000000000-a.webm",
		Filepath: "2023/11/recording-1700000000000-a.webm",
		Filesize: 1,
	}
	if err := db1.CreateRecording(rec); err != nil {
		t.Fatalf("db1 insert error: %v", err)
	}

	// db2 is a separate temp file, so it must not see db1's row.
	recs, err := db2.ListRecordings()
	if err != nil {
		t.Fatalf("db2 ListRecordings() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("db2 has %d recordings, want 0", len(recs))
	}
}
