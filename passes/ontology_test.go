package passes

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func writeOntology(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".json"), []byte(content), 0o644); err != nil {
		t.Fatalf("write ontology %s: %v", name, err)
	}
}

func TestLoadOntologyFile_MissingIsNotError(t *testing.T) {
	t.Parallel()

	_, found, err := loadOntologyFile(t.TempDir(), "feelings_ontology")
	if err != nil {
		t.Fatalf("loadOntologyFile: %v", err)
	}
	if found {
		t.Fatalf("found=true for missing file")
	}
}

func TestLoadOntologyFile_InvalidJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeOntology(t, dir, "broken", "{ nope")
	if _, _, err := loadOntologyFile(dir, "broken"); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}

func TestProjectOntology_Feelings(t *testing.T) {
	t.Parallel()

	doc := gjson.Parse(`{
		"canonical_feelings_flat_list": ["calm", "tense"],
		"normalization_map": {"chill": "calm"},
		"explicit_exclusion": {"disallowed_tokens": ["betrayed"]},
		"extra": "ignored"
	}`)
	got := projectOntology("feelings_ontology", doc).(map[string]any)
	if _, ok := got["extra"]; ok {
		t.Fatalf("projection kept unrelated key")
	}
	feelings := got["canonical_feelings"].([]any)
	if len(feelings) != 2 || feelings[0] != "calm" {
		t.Fatalf("canonical_feelings=%v", feelings)
	}
	excl := got["explicit_exclusion"].([]any)
	if len(excl) != 1 || excl[0] != "betrayed" {
		t.Fatalf("explicit_exclusion=%v", excl)
	}
}

func TestProjectOntology_NeedsFlattensTaxonomy(t *testing.T) {
	t.Parallel()

	doc := gjson.Parse(`{
		"taxonomy": [
			{"category": "connection", "needs": [{"id": "belonging", "aliases": ["fit in"]}]},
			{"category": "autonomy", "needs": [{"id": "choice"}]}
		]
	}`)
	got := projectOntology("needs_ontology", doc).(map[string]any)
	needs := got["canonical_needs"].([]any)
	if len(needs) != 2 {
		t.Fatalf("len(needs)=%d, want 2", len(needs))
	}
	first := needs[0].(map[string]any)
	if first["id"] != "belonging" {
		t.Fatalf("needs[0].id=%v", first["id"])
	}
	second := needs[1].(map[string]any)
	if aliases := second["aliases"].([]any); len(aliases) != 0 {
		t.Fatalf("missing aliases should default empty, got %v", aliases)
	}
}

func TestProjectOntology_UnknownPassesThrough(t *testing.T) {
	t.Parallel()

	doc := gjson.Parse(`{"anything": {"goes": true}}`)
	got := projectOntology("plato_strategy_filter", doc).(map[string]any)
	if got["anything"].(map[string]any)["goes"] != true {
		t.Fatalf("passthrough lost content: %v", got)
	}
}

func TestRenderOntologySection(t *testing.T) {
	t.Parallel()

	docs := map[string]gjson.Result{
		"needs_ontology": gjson.Parse(`{"taxonomy": []}`),
	}
	section := renderOntologySection([]string{"needs_ontology"}, docs)
	if !strings.HasPrefix(section, "== ONTOLOGIES (REFERENCE DATA - USE THESE TOKENS ONLY) ==\n") {
		t.Fatalf("section header missing: %q", section)
	}
	if !strings.Contains(section, "### NEEDS ONTOLOGY") {
		t.Fatalf("section label missing: %q", section)
	}

	if got := renderOntologySection(nil, nil); got != "" {
		t.Fatalf("empty order should render nothing, got %q", got)
	}
}
