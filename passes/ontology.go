package passes

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

// loadOntologyFile resolves an ontology name to <dir>/<name>.json and parses
// it. A missing file is reported as (zero, false) so the caller can proceed
// without it; only unreadable or invalid content is an error.
func loadOntologyFile(dir, name string) (gjson.Result, bool, error) {
	path := filepath.Join(dir, name+".json")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return gjson.Result{}, false, nil
		}
		return gjson.Result{}, false, fmt.Errorf("loadOntologyFile: read %s: %w", path, err)
	}
	if !gjson.ValidBytes(b) {
		return gjson.Result{}, false, fmt.Errorf("loadOntologyFile: %s: not valid JSON", path)
	}
	return gjson.ParseBytes(b), true, nil
}

// projectOntology extracts the prompt-relevant subset of an ontology document.
// Each known name has a fixed, hand-specified projection; unrecognized names
// pass through whole.
func projectOntology(name string, doc gjson.Result) any {
	switch name {
	case "feelings_ontology":
		return map[string]any{
			"canonical_feelings": valueOr(doc.Get("canonical_feelings_flat_list"), []any{}),
			"normalization_map":  valueOr(doc.Get("normalization_map"), map[string]any{}),
			"explicit_exclusion": valueOr(doc.Get("explicit_exclusion.disallowed_tokens"), []any{}),
		}
	case "needs_ontology":
		needs := make([]any, 0, 64)
		doc.Get("taxonomy").ForEach(func(_, category gjson.Result) bool {
			category.Get("needs").ForEach(func(_, need gjson.Result) bool {
				needs = append(needs, map[string]any{
					"id":            need.Get("id").Value(),
					"aliases":       valueOr(need.Get("aliases"), []any{}),
					"anti_examples": valueOr(need.Get("anti_examples"), []any{}),
				})
				return true
			})
			return true
		})
		return map[string]any{"canonical_needs": needs}
	case "pseudo_feelings_lexicon":
		clusters := make([]any, 0, 16)
		doc.Get("clusters").ForEach(func(_, c gjson.Result) bool {
			entries := make([]any, 0, 8)
			c.Get("entries").ForEach(func(_, e gjson.Result) bool {
				entries = append(entries, map[string]any{
					"token":                    e.Get("token").Value(),
					"true_feelings_candidates": e.Get("true_feelings_candidates").Value(),
					"likely_needs":             e.Get("likely_needs").Value(),
					"template":                 e.Get("ofnr_translation_template").Value(),
				})
				return true
			})
			clusters = append(clusters, map[string]any{
				"cluster_id": c.Get("cluster_id").Value(),
				"entries":    entries,
			})
			return true
		})
		return map[string]any{
			"forbidden_as_feelings": valueOr(doc.Get("forbidden_as_feelings.tokens"), []any{}),
			"clusters":              clusters,
		}
	case "judgment_markers_ontology":
		clusters := make([]any, 0, 16)
		doc.Get("clusters").ForEach(func(_, c gjson.Result) bool {
			tokens := c.Get("tokens")
			if !tokens.Exists() {
				tokens = c.Get("markers")
			}
			clusters = append(clusters, map[string]any{
				"label":  c.Get("label").Value(),
				"tokens": valueOr(tokens, []any{}),
			})
			return true
		})
		return map[string]any{
			"clusters":       clusters,
			"regex_patterns": valueOr(doc.Get("regex_patterns"), []any{}),
		}
	default:
		// plato_strategy_filter, request_quality_ontology, and anything
		// unrecognized are forwarded whole.
		return doc.Value()
	}
}

func valueOr(v gjson.Result, fallback any) any {
	if !v.Exists() || v.Type == gjson.Null {
		return fallback
	}
	return v.Value()
}

// renderOntologySection serializes the projected ontologies into the block
// appended to every system prompt. Returns "" when nothing was loaded.
func renderOntologySection(order []string, docs map[string]gjson.Result) string {
	if len(order) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("== ONTOLOGIES (REFERENCE DATA - USE THESE TOKENS ONLY) ==\n")
	for _, name := range order {
		doc, ok := docs[name]
		if !ok {
			continue
		}
		label := strings.ToUpper(strings.ReplaceAll(name, "_", " "))
		fmt.Fprintf(&b, "\n### %s\n", label)
		rendered, err := json.MarshalIndent(projectOntology(name, doc), "", "  ")
		if err != nil {
			continue
		}
		b.Write(rendered)
		b.WriteString("\n")
	}
	return b.String()
}
