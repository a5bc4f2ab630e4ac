package dataset

import "strconv"

// The skeleton structs below rely on encoding/json's nil handling: a nil
// slice or nil pointer marshals as an explicit null, which is exactly the
// "not yet annotated" marker the passes look for.

type Source struct {
	Corpus   string `json:"corpus"`
	Folder   string `json:"folder"`
	Split    string `json:"split"`
	File     string `json:"file"`
	LineID   string `json:"line_id"`
	PairType string `json:"pair_type"`
}

type Input struct {
	Format            string  `json:"format"`
	Prompt            string  `json:"prompt"`
	Context           *string `json:"context"`
	Chosen            *string `json:"chosen"`
	Rejected          *string `json:"rejected"`
	AssistantResponse *string `json:"assistant_response"`
	ConversationTurns []Turn  `json:"conversation_turns"`
	TargetTurnIndex   *int    `json:"target_turn_index"`
	Notes             *string `json:"notes"`
}

type OFNR struct {
	Observation             []string `json:"observation"`
	Feelings                []string `json:"feelings"`
	Need                    []string `json:"need"`
	ExplicitNeeds           []string `json:"explicit_needs"`
	ImplicitNeeds           []string `json:"implicit_needs"`
	ExplicitRequest         []string `json:"explicit_request"`
	ImplicitRequest         []string `json:"implicit_request"`
	ImplicitIntent          *string  `json:"implicit_intent"`
	EvaluationsDetected     []string `json:"evaluations_detected"`
	PseudoFeelingsDetected  []string `json:"pseudo_feelings_detected"`
	StrategyLeakageDetected []string `json:"strategy_leakage_detected"`
	TranslationNotes        *string  `json:"translation_notes"`
}

type Metadata struct {
	SomaticMarkers     []string `json:"somatic_markers"`
	EmotionArousalHint *string  `json:"emotion_arousal_hint"`
	EmotionValenceHint *string  `json:"emotion_valence_hint"`
	Language           string   `json:"language"`
}

type Safety struct {
	Label            *string  `json:"label"`
	PolicyCategory   *string  `json:"policy_category"`
	Reason           *string  `json:"reason"`
	RewriteMode      *string  `json:"rewrite_mode"`
	SafeAlternative  []string `json:"safe_alternative"`
	SafetyConfidence *float64 `json:"safety_confidence"`
}

type Quality struct {
	OFNRCompliance                  *float64 `json:"ofnr_compliance"`
	ObservationIsNonjudgmental      *float64 `json:"observation_is_nonjudgmental"`
	PseudoFeelingTranslationQuality *float64 `json:"pseudo_feeling_translation_quality"`
	NeedsListMatch                  *float64 `json:"needs_list_match"`
	StrategyLeakageScore            *float64 `json:"strategy_leakage_score"`
	RequestIsActionable             *float64 `json:"request_is_actionable"`
	RequestIsNoncoercive            *float64 `json:"request_is_noncoercive"`
	OverallConfidence               *float64 `json:"overall_confidence"`
}

type Flags struct {
	ErrorFlags []string `json:"error_flags"`
	Warnings   []string `json:"warnings"`
}

type Consensus struct {
	Enabled                 bool     `json:"enabled"`
	Method                  string   `json:"method"`
	ConsensusScore          float64  `json:"consensus_score"`
	ConsensusPass           bool     `json:"consensus_pass"`
	ResolvedNeed            []string `json:"resolved_need"`
	ResolvedFeelings        []string `json:"resolved_feelings"`
	ResolvedObservation     []string `json:"resolved_observation"`
	ResolvedImplicitRequest []string `json:"resolved_implicit_request"`
}

type TeacherAgreement struct {
	MultiTeacherEnabled bool      `json:"multi_teacher_enabled"`
	Teachers            []string  `json:"teachers"`
	Consensus           Consensus `json:"consensus"`
}

type PreferenceAlignment struct {
	ChosenMoreConstructive *bool   `json:"chosen_more_constructive"`
	ChosenMoreSafe         *bool   `json:"chosen_more_safe"`
	ChosenMoreHelpful      *bool   `json:"chosen_more_helpful"`
	Notes                  *string `json:"notes"`
}

type PairwiseSignals struct {
	ToxicityDelta         *float64 `json:"toxicity_delta"`
	ConstructivenessDelta *float64 `json:"constructiveness_delta"`
	HelpfulnessDelta      *float64 `json:"helpfulness_delta"`
}

type PairwisePreference struct {
	Available           bool                `json:"available"`
	PreferenceAlignment PreferenceAlignment `json:"preference_alignment"`
	PairwiseSignals     PairwiseSignals     `json:"pairwise_signals"`
}

// Record is one master-file line with its full annotation skeleton.
type Record struct {
	ID                 string             `json:"id"`
	Dataset            Meta               `json:"dataset"`
	Source             Source             `json:"source"`
	Input              Input              `json:"input"`
	OFNR               OFNR               `json:"ofnr"`
	Metadata           Metadata           `json:"metadata"`
	Safety             Safety             `json:"safety"`
	Quality            Quality            `json:"quality"`
	Flags              Flags              `json:"flags"`
	TeacherAgreement   TeacherAgreement   `json:"teacher_agreement"`
	PairwisePreference PairwisePreference `json:"pairwise_preference"`
}

func newSkeleton(folder, file string, lineIdx int, pairType string) Record {
	return Record{
		ID:      GenerateID(folder, lineIdx),
		Dataset: DefaultMeta,
		Source: Source{
			Corpus:   "hh-rlhf",
			Folder:   folder,
			Split:    "train",
			File:     file,
			LineID:   strconv.Itoa(lineIdx),
			PairType: pairType,
		},
		Metadata: Metadata{Language: "en"},
		TeacherAgreement: TeacherAgreement{
			Teachers: []string{},
			Consensus: Consensus{
				Method:                  "majority_vote",
				ResolvedNeed:            []string{},
				ResolvedFeelings:        []string{},
				ResolvedObservation:     []string{},
				ResolvedImplicitRequest: []string{},
			},
		},
	}
}

// NewPairRecord builds the skeleton for a chosen/rejected sample. The prompt
// and turn structure come from the chosen transcript.
func NewPairRecord(chosen, rejected, folder, file string, lineIdx int) Record {
	prompt, context, turns := ParseConversation(chosen)

	rec := newSkeleton(folder, file, lineIdx, "chosen_rejected")
	rec.Input = Input{
		Format:            "pair",
		Prompt:            prompt,
		Context:           context,
		Chosen:            &chosen,
		Rejected:          &rejected,
		ConversationTurns: turns,
	}
	rec.PairwisePreference.Available = true
	return rec
}

// NewRedTeamRecord builds the skeleton for a single red-team transcript.
// taskDescription, when non-nil, lands in input.notes.
func NewRedTeamRecord(transcript string, taskDescription *string, folder, file string, lineIdx int) Record {
	prompt, context, turns := ParseConversation(transcript)

	var assistantResponse *string
	if n := len(turns); n > 0 && turns[n-1].Role == "assistant" {
		assistantResponse = &turns[n-1].Content
	}

	rec := newSkeleton(folder, file, lineIdx, "single")
	rec.Input = Input{
		Format:            "single",
		Prompt:            prompt,
		Context:           context,
		AssistantResponse: assistantResponse,
		ConversationTurns: turns,
		Notes:             taskDescription,
	}
	return rec
}
