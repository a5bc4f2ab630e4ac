package passes

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadRecords_SkipsMalformedLines(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "rows.jsonl")
	content := strings.Join([]string{
		`{"id": "a"}`,
		`not json`,
		``,
		`[1, 2]`,
		`{"id": "b"}`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	recs, err := LoadRecords(path, 0)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len(recs)=%d, want 2", len(recs))
	}
	if got, _ := recs[1].Get("id"); got.String() != "b" {
		t.Fatalf("recs[1].id=%q", got.String())
	}
}

func TestLoadRecords_Limit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "rows.jsonl")
	content := `{"id": "a"}` + "\n" + `{"id": "b"}` + "\n" + `{"id": "c"}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	recs, err := LoadRecords(path, 2)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len(recs)=%d, want 2", len(recs))
	}
}

func TestSaveRecords_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.jsonl")
	in := []Record{
		Record(`{"id": "a", "safety": {"label": null}}`),
		Record(`{"id": "b"}`),
	}
	if err := SaveRecords(path, in); err != nil {
		t.Fatalf("SaveRecords: %v", err)
	}

	out, err := LoadRecords(path, 0)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len=%d, want %d", len(out), len(in))
	}
	for i := range in {
		if string(out[i]) != string(in[i]) {
			t.Fatalf("record %d changed: %s vs %s", i, out[i], in[i])
		}
	}
}

func TestLoadRecords_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadRecords(filepath.Join(t.TempDir(), "nope.jsonl"), 0); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
