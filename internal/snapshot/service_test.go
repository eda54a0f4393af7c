package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRecordAndHistory(t *testing.T) {
	svc := New(t.TempDir())

	first, err := svc.Record("gr_1", []byte(`{"exportVersion":"1.0"}`), "Export snapshot")
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if first.Hash == "" {
		t.Fatal("expected commit hash")
	}

	_, err = svc.Record("gr_1", []byte(`{"exportVersion":"1.0","verses":[]}`), "Export snapshot")
	if err != nil {
		t.Fatalf("second Record() error = %v", err)
	}

	history, err := svc.History("gr_1", 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if !strings.Contains(history[0].Message, "Export snapshot") {
		t.Errorf("unexpected message %q", history[0].Message)
	}
}

func TestRecordUnchangedPayloadReturnsHead(t *testing.T) {
	svc := New(t.TempDir())
	payload := []byte(`{"exportVersion":"1.0"}`)

	first, err := svc.Record("gr_1", payload, "Export snapshot")
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	second, err := svc.Record("gr_1", payload, "Export snapshot")
	if err != nil {
		t.Fatalf("repeat Record() error = %v", err)
	}
	if first.Hash != second.Hash {
		t.Errorf("unchanged payload should not create a new commit: %s vs %s", first.Hash, second.Hash)
	}

	history, err := svc.History("gr_1", 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 1 {
		t.Errorf("expected 1 history entry, got %d", len(history))
	}
}

func TestGetByHashReturnsRecordedPayload(t *testing.T) {
	svc := New(t.TempDir())
	payload := []byte(`{"grantha":{"title":"Gita"}}`)

	info, err := svc.Record("gr_1", payload, "Export snapshot")
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := svc.GetByHash("gr_1", info.Hash)
	if err != nil {
		t.Fatalf("GetByHash() error = %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("payload mismatch: %s", got)
	}
}

func TestHistoryForUnknownGranthaIsEmpty(t *testing.T) {
	svc := New(t.TempDir())

	history, err := svc.History("gr_missing", 5)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected empty history, got %d entries", len(history))
	}
}

func TestRemoveDeletesRepo(t *testing.T) {
	dir := t.TempDir()
	svc := New(dir)

	if _, err := svc.Record("gr_1", []byte(`{}`), "Export snapshot"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := svc.Remove("gr_1"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "gr_1")); !os.IsNotExist(err) {
		t.Error("repo directory should be gone")
	}
}
