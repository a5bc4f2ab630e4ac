package passes

import "testing"

func TestExtractObject_FencedBlock(t *testing.T) {
	t.Parallel()

	text := "Here is the analysis:\n```json\n{\"observation\": [\"x\"]}\n```\nHope that helps!"
	obj, ok := ExtractObject(text)
	if !ok {
		t.Fatalf("ExtractObject ok=false")
	}
	if got := obj.Get("observation.0").String(); got != "x" {
		t.Fatalf("observation[0]=%q, want x", got)
	}
}

func TestExtractObject_BareFence(t *testing.T) {
	t.Parallel()

	obj, ok := ExtractObject("```\n{\"a\": 1}\n```")
	if !ok {
		t.Fatalf("ExtractObject ok=false")
	}
	if obj.Get("a").Int() != 1 {
		t.Fatalf("a=%v", obj.Get("a"))
	}
}

func TestExtractObject_WholeText(t *testing.T) {
	t.Parallel()

	obj, ok := ExtractObject("  {\"feelings\": []}  ")
	if !ok {
		t.Fatalf("ExtractObject ok=false")
	}
	if !obj.Get("feelings").IsArray() {
		t.Fatalf("feelings not an array: %v", obj.Get("feelings"))
	}
}

func TestExtractObject_SubstringWithTrailingJunk(t *testing.T) {
	t.Parallel()

	obj, ok := ExtractObject("Sure! {\"need\": [\"safety\"]} Let me know if you need more.")
	if !ok {
		t.Fatalf("ExtractObject ok=false")
	}
	if got := obj.Get("need.0").String(); got != "safety" {
		t.Fatalf("need[0]=%q", got)
	}
}

func TestExtractObject_NoObject(t *testing.T) {
	t.Parallel()

	for _, text := range []string{
		"no braces here",
		"",
		"} backwards {",
		"{ not json at all",
		"[1, 2, 3]",
	} {
		if _, ok := ExtractObject(text); ok {
			t.Fatalf("ExtractObject(%q) ok=true, want false", text)
		}
	}
}

func TestExtractObject_NestedBracesInsideStrings(t *testing.T) {
	t.Parallel()

	obj, ok := ExtractObject(`prefix {"note": "a { tricky } value"} suffix`)
	if !ok {
		t.Fatalf("ExtractObject ok=false")
	}
	if got := obj.Get("note").String(); got != "a { tricky } value" {
		t.Fatalf("note=%q", got)
	}
}
