package alpha

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/claude/ironlog/internal/models"
)

type fakeImporter struct {
	userID   int
	source   string
	sessions []models.Session
	replaced int64
	err      error
}

func (f *fakeImporter) ImportSessions(_ context.Context, userID int, source string, sessions []models.Session) (int64, int64, error) {
	f.userID, f.source, f.sessions = userID, source, sessions
	if f.err != nil {
		return 0, 0, f.err
	}
	var n int64
	for _, s := range sessions {
		for _, ex := range s.Exercises {
			n += int64(len(ex.Sets))
		}
	}
	return f.replaced, n, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestIngest verifies counts reported for a full export.
func TestIngest(t *testing.T) {
	imp := &fakeImporter{replaced: 1}
	p := NewProvider(imp, nil, testLogger())

	res, err := p.Ingest(context.Background(), strings.NewReader(sampleCSV), 3)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if imp.userID != 3 || imp.source != Source {
		t.Errorf("import called with %d/%q", imp.userID, imp.source)
	}
	if res.SessionsReceived != 2 {
		t.Errorf("sessions received = %d, want 2", res.SessionsReceived)
	}
	// Legs: 5+3+4+3+4+3, Push: 3 warmups + 3
	if res.SetsReceived != 28 {
		t.Errorf("sets received = %d, want 28", res.SetsReceived)
	}
	if res.SetsInserted != 28 {
		t.Errorf("sets inserted = %d, want 28", res.SetsInserted)
	}
	if res.SessionsReplaced != 1 {
		t.Errorf("sessions replaced = %d, want 1", res.SessionsReplaced)
	}
}

// TestIngestEmpty verifies that an empty export does not touch storage.
func TestIngestEmpty(t *testing.T) {
	imp := &fakeImporter{}
	p := NewProvider(imp, nil, testLogger())

	res, err := p.Ingest(context.Background(), strings.NewReader(""), 1)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if imp.sessions != nil {
		t.Error("importer called for empty export")
	}
	if res.Message == "" {
		t.Error("expected message for empty export")
	}
}

// TestIngestStoreError verifies storage failures are returned.
func TestIngestStoreError(t *testing.T) {
	boom := errors.New("boom")
	p := NewProvider(&fakeImporter{err: boom}, nil, testLogger())

	_, err := p.Ingest(context.Background(), strings.NewReader(sampleCSV), 1)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}
