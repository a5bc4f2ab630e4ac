// Package dataset turns raw HH-RLHF source files into master JSONL records
// carrying the full annotation skeleton. Every annotation field starts as an
// explicit null so downstream passes can tell "never attempted" from "ran and
// produced nothing".
package dataset

import (
	"fmt"
	"strings"
)

// Meta identifies the produced dataset in every record.
type Meta struct {
	DatasetName    string `json:"dataset_name"`
	DatasetVersion string `json:"dataset_version"`
	ReleaseTier    string `json:"release_tier"`
}

// DefaultMeta is stamped into records unless the caller overrides it.
var DefaultMeta = Meta{
	DatasetName:    "NVC-HH",
	DatasetVersion: "1.1",
	ReleaseTier:    "RAW",
}

// Turn is one conversational turn in source order.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	humanMarker     = "\n\nHuman: "
	assistantMarker = "\n\nAssistant: "
)

// ParseConversation splits raw HH-RLHF transcript text into turns and pulls
// out the prompt (the last user turn). The context is everything before the
// prompt, nil for single-turn conversations.
func ParseConversation(text string) (prompt string, context *string, turns []Turn) {
	parts := strings.Split(text, humanMarker)
	for i, part := range parts {
		if i == 0 && strings.TrimSpace(part) == "" {
			continue
		}
		subParts := strings.Split(part, assistantMarker)
		for j, sp := range subParts {
			role := "assistant"
			if j == 0 {
				role = "user"
			}
			turns = append(turns, Turn{Role: role, Content: strings.TrimSpace(sp)})
		}
	}

	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == "user" {
			prompt = turns[i].Content
			break
		}
	}

	if prompt != "" && len(turns) > 1 {
		if idx := strings.LastIndex(text, prompt); idx >= 0 {
			ctx := strings.TrimSpace(text[:idx])
			context = &ctx
		}
	}
	return prompt, context, turns
}

// GenerateID builds the deterministic record ID from the source folder and
// the 1-based line number.
func GenerateID(folder string, lineIdx int) string {
	return fmt.Sprintf("%s_%06d", strings.ReplaceAll(folder, "-", "_"), lineIdx)
}
