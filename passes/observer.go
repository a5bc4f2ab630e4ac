package passes

import (
	"fmt"

	"github.com/theimaginaryfoundation/annotate-o-tron/passes/fileutils"
)

// Observer is pass 1: objective observations and detected evaluation words.
type Observer struct{}

var observerFields = []string{
	"ofnr.observation",
	"ofnr.evaluations_detected",
}

type observerReply struct {
	Observation         []string `json:"observation"`
	EvaluationsDetected []string `json:"evaluations_detected"`
}

var observerSchema = generateSchema[observerReply]()

func (Observer) Name() string                 { return "observer" }
func (Observer) OwnedFields() []string        { return observerFields }
func (Observer) PromptFile() string           { return "pass_observer.txt" }
func (Observer) RequiredOntologies() []string { return []string{"judgment_markers_ontology"} }
func (Observer) ReplySchema() map[string]any  { return observerSchema }

func (Observer) FallbackSystemPrompt() string {
	return `You are an NVC Observer. Extract objective observations only.
Apply the Camera Test: only facts a video camera could record.
Detect judgment/evaluation words and list them.
Output JSON: {"observation": [...], "evaluations_detected": [...]}`
}

func (Observer) BuildUserPrompt(rec Record) string {
	format, _ := rec.Get("input.format")

	var text string
	if format.String() == "pair" {
		if v, ok := rec.Get("input.chosen"); ok {
			text = v.String()
		} else if v, ok := rec.Get("input.rejected"); ok {
			text = v.String()
		}
	} else if v, ok := rec.Get("input.assistant_response"); ok {
		text = v.String()
	}

	prompt, _ := rec.Get("input.prompt")
	context := "(none)"
	if v, ok := rec.Get("input.context"); ok && v.String() != "" {
		context = fileutils.Truncate(v.String(), 1500)
	}

	return fmt.Sprintf(`Analyze this conversation and extract observations.

CONTEXT:
%s

LAST USER TURN:
%s

FULL TEXT:
%s

Extract: (1) objective observations (camera-test), (2) any judgment/evaluation words detected.`,
		context, prompt.String(), fileutils.Truncate(text, 3000))
}

func (Observer) ParseReply(text string) ParsedUpdate {
	obj, ok := ExtractObject(text)
	if !ok {
		return ParsedUpdate{}
	}
	return ParsedUpdate{
		"ofnr.observation":          listOrEmpty(obj, "observation"),
		"ofnr.evaluations_detected": listOrEmpty(obj, "evaluations_detected"),
	}
}
