package passes

import "fmt"

// Empathizer is pass 2: feelings, canonical needs, wants, pseudo-feeling
// detections, and arousal/valence hints. Reads the Observer's output.
type Empathizer struct{}

var empathizerFields = []string{
	"ofnr.feelings",
	"ofnr.need",
	"ofnr.explicit_needs",
	"ofnr.implicit_needs",
	"ofnr.pseudo_feelings_detected",
	"metadata.emotion_arousal_hint",
	"metadata.emotion_valence_hint",
}

type empathizerReply struct {
	Feelings               []string `json:"feelings"`
	Need                   []string `json:"need"`
	ExplicitNeeds          []string `json:"explicit_needs"`
	ImplicitNeeds          []string `json:"implicit_needs"`
	PseudoFeelingsDetected []string `json:"pseudo_feelings_detected"`
	EmotionArousalHint     string   `json:"emotion_arousal_hint"`
	EmotionValenceHint     string   `json:"emotion_valence_hint"`
}

var empathizerSchema = generateSchema[empathizerReply]()

func (Empathizer) Name() string          { return "empathizer" }
func (Empathizer) OwnedFields() []string { return empathizerFields }
func (Empathizer) PromptFile() string    { return "pass_empathizer.txt" }
func (Empathizer) RequiredOntologies() []string {
	return []string{"feelings_ontology", "needs_ontology", "pseudo_feelings_lexicon"}
}
func (Empathizer) ReplySchema() map[string]any { return empathizerSchema }

func (Empathizer) FallbackSystemPrompt() string {
	return `You are an NVC Empathizer. Identify feelings and needs.
Use ONLY canonical tokens from the ontologies provided.
Translate pseudo-feelings to true feelings.
Output JSON: {"feelings": [...], "need": [...], ...}`
}

func (Empathizer) BuildUserPrompt(rec Record) string {
	prompt, _ := rec.Get("input.prompt")
	observation := rawOrList(rec, "ofnr.observation")

	return fmt.Sprintf(`Based on the observation, identify feelings and needs.

OBSERVATION (from Pass 1):
%s

ORIGINAL USER TURN:
%s

Identify: feelings (canonical only), universal needs (canonical only), explicit/implicit wants, pseudo-feelings (translate them), arousal/valence.`,
		observation, prompt.String())
}

func (Empathizer) ParseReply(text string) ParsedUpdate {
	obj, ok := ExtractObject(text)
	if !ok {
		return ParsedUpdate{}
	}
	upd := ParsedUpdate{
		"ofnr.feelings":                 listOrEmpty(obj, "feelings"),
		"ofnr.need":                     listOrEmpty(obj, "need"),
		"ofnr.explicit_needs":           listOrEmpty(obj, "explicit_needs"),
		"ofnr.implicit_needs":           listOrEmpty(obj, "implicit_needs"),
		"ofnr.pseudo_feelings_detected": listOrEmpty(obj, "pseudo_feelings_detected"),
	}
	putIfPresent(upd, "metadata.emotion_arousal_hint", obj.Get("emotion_arousal_hint"))
	putIfPresent(upd, "metadata.emotion_valence_hint", obj.Get("emotion_valence_hint"))
	return upd
}
