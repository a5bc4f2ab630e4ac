package passes

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var fencedJSONRe = regexp.MustCompile("```(?:json)?\\s*(\\{[\\s\\S]*?\\})\\s*```")

// ExtractObject recovers a single JSON object from free-form model output,
// which may wrap it in prose, a markdown fence, or trailing commentary.
// Strategies in priority order: fenced code block, whole-text parse, then the
// substring between the first '{' and the last '}'. ok is false when every
// strategy fails; no input ever produces an error or panic.
func ExtractObject(text string) (gjson.Result, bool) {
	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "{") {
		if obj, ok := parseObject(text); ok {
			return obj, true
		}
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start != -1 && end > start {
		if obj, ok := parseObject(text[start : end+1]); ok {
			return obj, true
		}
	}

	return gjson.Result{}, false
}

func parseObject(s string) (gjson.Result, bool) {
	if !gjson.Valid(s) {
		return gjson.Result{}, false
	}
	obj := gjson.Parse(s)
	if !obj.IsObject() {
		return gjson.Result{}, false
	}
	return obj, true
}
