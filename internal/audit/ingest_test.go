package audit

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadRecords(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", `{"doc_id":"contract-b","governing_law":"Delaware"}`)
	writeFile(t, dir, "a.json", `{"doc_id":"contract-a"}`)
	writeFile(t, dir, "_summary.json", `{"not":"a record"}`)
	writeFile(t, dir, "notes.txt", "ignored")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	records, err := LoadRecords(dir)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID() != "contract-a" || records[1].ID() != "contract-b" {
		t.Fatalf("records not in id order: %v, %v", records[0].ID(), records[1].ID())
	}
}

func TestLoadRecordsLegacyAndFallbackIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "legacy.json", `{"_doc_id":"old-form"}`)
	writeFile(t, dir, "anon.json", `{"governing_law":"Texas"}`)

	records, err := LoadRecords(dir)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// Sorted ids: "anon" (file stem fallback) before "old-form".
	if records[0].ID() != "anon" {
		t.Fatalf("fallback id = %q, want file stem", records[0].ID())
	}
	if records[1].ID() != "old-form" {
		t.Fatalf("legacy id = %q, want old-form", records[1].ID())
	}
}

func TestLoadRecordsBadJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.json", `{not json`)
	if _, err := LoadRecords(dir); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadRecordsMissingDir(t *testing.T) {
	if _, err := LoadRecords(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
