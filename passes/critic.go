package passes

import (
	"fmt"

	"github.com/theimaginaryfoundation/annotate-o-tron/passes/fileutils"
)

// Critic is pass 4: safety labeling, quality scoring, and flagging of the
// full annotation produced by the first three passes.
type Critic struct{}

var criticFields = []string{
	"safety.label",
	"safety.policy_category",
	"safety.reason",
	"safety.rewrite_mode",
	"safety.safe_alternative",
	"safety.safety_confidence",
	"quality.ofnr_compliance",
	"quality.observation_is_nonjudgmental",
	"quality.pseudo_feeling_translation_quality",
	"quality.needs_list_match",
	"quality.strategy_leakage_score",
	"quality.request_is_actionable",
	"quality.request_is_noncoercive",
	"quality.overall_confidence",
	"flags.error_flags",
	"flags.warnings",
	"metadata.somatic_markers",
}

type criticReply struct {
	Safety struct {
		Label            string   `json:"label"`
		PolicyCategory   string   `json:"policy_category"`
		Reason           string   `json:"reason"`
		RewriteMode      string   `json:"rewrite_mode"`
		SafeAlternative  []string `json:"safe_alternative"`
		SafetyConfidence float64  `json:"safety_confidence"`
	} `json:"safety"`
	Quality struct {
		OFNRCompliance                  float64 `json:"ofnr_compliance"`
		ObservationIsNonjudgmental      float64 `json:"observation_is_nonjudgmental"`
		PseudoFeelingTranslationQuality float64 `json:"pseudo_feeling_translation_quality"`
		NeedsListMatch                  float64 `json:"needs_list_match"`
		StrategyLeakageScore            float64 `json:"strategy_leakage_score"`
		RequestIsActionable             float64 `json:"request_is_actionable"`
		RequestIsNoncoercive            float64 `json:"request_is_noncoercive"`
		OverallConfidence               float64 `json:"overall_confidence"`
	} `json:"quality"`
	Flags struct {
		ErrorFlags []string `json:"error_flags"`
		Warnings   []string `json:"warnings"`
	} `json:"flags"`
	SomaticMarkers []string `json:"somatic_markers"`
}

var criticSchema = generateSchema[criticReply]()

func (Critic) Name() string          { return "critic" }
func (Critic) OwnedFields() []string { return criticFields }
func (Critic) PromptFile() string    { return "pass_critic.txt" }
func (Critic) RequiredOntologies() []string {
	return []string{
		"feelings_ontology",
		"needs_ontology",
		"pseudo_feelings_lexicon",
		"judgment_markers_ontology",
		"somatic_markers_ontology",
	}
}
func (Critic) ReplySchema() map[string]any { return criticSchema }

func (Critic) FallbackSystemPrompt() string {
	return `You are an NVC Critic. Evaluate safety and quality.
Check if annotation follows ontology constraints.
Score each quality metric 0.0-1.0.
Output JSON: {"safety": {...}, "quality": {...}, "flags": {...}}`
}

func (Critic) BuildUserPrompt(rec Record) string {
	prompt, _ := rec.Get("input.prompt")
	chosen := "N/A"
	if v, ok := rec.Get("input.chosen"); ok && v.String() != "" {
		chosen = fileutils.Truncate(v.String(), 500)
	}
	rejected := "N/A"
	if v, ok := rec.Get("input.rejected"); ok && v.String() != "" {
		rejected = fileutils.Truncate(v.String(), 500)
	}

	return fmt.Sprintf(`Evaluate this OFNR annotation for safety and quality.

ORIGINAL INPUT:
Prompt: %s
Chosen: %s
Rejected: %s

OFNR ANNOTATION:
Observation: %s
Feelings: %s
Needs: %s
Explicit Request: %s
Implicit Request: %s
Pseudo-feelings detected: %s
Evaluations detected: %s

Evaluate: safety label, quality scores (0-1), flags. Check against ontologies.`,
		prompt.String(), chosen, rejected,
		rawOrList(rec, "ofnr.observation"),
		rawOrList(rec, "ofnr.feelings"),
		rawOrList(rec, "ofnr.need"),
		rawOrList(rec, "ofnr.explicit_request"),
		rawOrList(rec, "ofnr.implicit_request"),
		rawOrList(rec, "ofnr.pseudo_feelings_detected"),
		rawOrList(rec, "ofnr.evaluations_detected"))
}

func (Critic) ParseReply(text string) ParsedUpdate {
	obj, ok := ExtractObject(text)
	if !ok {
		return ParsedUpdate{}
	}

	safety := obj.Get("safety")
	quality := obj.Get("quality")
	flags := obj.Get("flags")

	upd := ParsedUpdate{
		"safety.safe_alternative":  listOrEmpty(safety, "safe_alternative"),
		"flags.error_flags":        listOrEmpty(flags, "error_flags"),
		"flags.warnings":           listOrEmpty(flags, "warnings"),
		"metadata.somatic_markers": listOrEmpty(obj, "somatic_markers"),
	}
	putIfPresent(upd, "safety.label", safety.Get("label"))
	putIfPresent(upd, "safety.policy_category", safety.Get("policy_category"))
	putIfPresent(upd, "safety.reason", safety.Get("reason"))
	putIfPresent(upd, "safety.rewrite_mode", safety.Get("rewrite_mode"))
	putIfPresent(upd, "safety.safety_confidence", safety.Get("safety_confidence"))
	putIfPresent(upd, "quality.ofnr_compliance", quality.Get("ofnr_compliance"))
	putIfPresent(upd, "quality.observation_is_nonjudgmental", quality.Get("observation_is_nonjudgmental"))
	putIfPresent(upd, "quality.pseudo_feeling_translation_quality", quality.Get("pseudo_feeling_translation_quality"))
	putIfPresent(upd, "quality.needs_list_match", quality.Get("needs_list_match"))
	putIfPresent(upd, "quality.strategy_leakage_score", quality.Get("strategy_leakage_score"))
	putIfPresent(upd, "quality.request_is_actionable", quality.Get("request_is_actionable"))
	putIfPresent(upd, "quality.request_is_noncoercive", quality.Get("request_is_noncoercive"))
	putIfPresent(upd, "quality.overall_confidence", quality.Get("overall_confidence"))
	return upd
}
