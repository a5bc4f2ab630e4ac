package passes

import "fmt"

// Strategist is pass 3: constructive requests, implicit intent, and
// strategy-leakage detection. Reads Observer and Empathizer output.
type Strategist struct{}

var strategistFields = []string{
	"ofnr.explicit_request",
	"ofnr.implicit_request",
	"ofnr.implicit_intent",
	"ofnr.strategy_leakage_detected",
	"ofnr.translation_notes",
}

type strategistReply struct {
	ExplicitRequest         []string `json:"explicit_request"`
	ImplicitRequest         []string `json:"implicit_request"`
	ImplicitIntent          string   `json:"implicit_intent"`
	StrategyLeakageDetected []string `json:"strategy_leakage_detected"`
	TranslationNotes        string   `json:"translation_notes"`
}

var strategistSchema = generateSchema[strategistReply]()

func (Strategist) Name() string          { return "strategist" }
func (Strategist) OwnedFields() []string { return strategistFields }
func (Strategist) PromptFile() string    { return "pass_strategist.txt" }
func (Strategist) RequiredOntologies() []string {
	return []string{"plato_strategy_filter", "request_quality_ontology"}
}
func (Strategist) ReplySchema() map[string]any { return strategistSchema }

func (Strategist) FallbackSystemPrompt() string {
	return `You are an NVC Strategist. Formulate constructive requests.
Apply PLATO test to detect strategies.
Convert demands to positive requests.
Output JSON: {"explicit_request": [...], "implicit_request": [...], ...}`
}

func (Strategist) BuildUserPrompt(rec Record) string {
	prompt, _ := rec.Get("input.prompt")
	observation := rawOrList(rec, "ofnr.observation")
	feelings := rawOrList(rec, "ofnr.feelings")
	needs := rawOrList(rec, "ofnr.need")
	explicitNeeds := rawOrList(rec, "ofnr.explicit_needs")

	return fmt.Sprintf(`Based on the analysis, formulate requests.

OBSERVATION: %s
FEELINGS: %s
NEEDS (universal): %s
EXPLICIT WANTS: %s

ORIGINAL USER TURN:
%s

Generate: explicit_request, implicit_request (NVC-style "Would you be willing to...?"), implicit_intent, strategy_leakage.`,
		observation, feelings, needs, explicitNeeds, prompt.String())
}

func (Strategist) ParseReply(text string) ParsedUpdate {
	obj, ok := ExtractObject(text)
	if !ok {
		return ParsedUpdate{}
	}
	upd := ParsedUpdate{
		"ofnr.explicit_request":          listOrEmpty(obj, "explicit_request"),
		"ofnr.implicit_request":          listOrEmpty(obj, "implicit_request"),
		"ofnr.strategy_leakage_detected": listOrEmpty(obj, "strategy_leakage_detected"),
	}
	putIfPresent(upd, "ofnr.implicit_intent", obj.Get("implicit_intent"))
	putIfPresent(upd, "ofnr.translation_notes", obj.Get("translation_notes"))
	return upd
}
