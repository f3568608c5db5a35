package types

// RawBlock is one outline unit as supplied by the source-document loader,
// before enrichment. Pages is the raw page spec ("7", "2,4-6", "5-3", "1 & 3").
type RawBlock struct {
	Title   string `json:"title"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
	Pages   string `json:"pages"`

	// Caller overrides. Zero values mean "infer".
	DurationSeconds           int      `json:"duration_seconds,omitempty"`
	RequiresAssessment        *bool    `json:"requires_assessment,omitempty"`
	InteractionKind           string   `json:"interaction_kind,omitempty"`
	InteractionGuidance       string   `json:"interaction_guidance,omitempty"`
	AccessibilityRequirements []string `json:"accessibility_requirements,omitempty"`
	ContinuityGroupID         string   `json:"continuity_group_id,omitempty"`
}

// BlueprintBlock is the enriched generation contract for one scene. Created
// once by the enricher and read-only afterwards.
type BlueprintBlock struct {
	Pages                     []int    `json:"pages"`
	Title                     string   `json:"title"`
	Kind                      string   `json:"kind"`
	RawInstructions           string   `json:"raw_instructions"`
	Purpose                   string   `json:"purpose"`
	ExpectedDurationSeconds   int      `json:"expected_duration_seconds"`
	RequiresAssessment        bool     `json:"requires_assessment"`
	ExpectedInteractionKind   string   `json:"expected_interaction_kind,omitempty"`
	InteractionGuidance       string   `json:"interaction_guidance,omitempty"`
	AccessibilityRequirements []string `json:"accessibility_requirements,omitempty"`
	Keywords                  []string `json:"keywords"`
	ContinuityGroupID         string   `json:"continuity_group_id,omitempty"`
}

// Scene purposes used by the continuity rules.
const (
	PurposeTeach      = "teach"
	PurposeExample    = "example"
	PurposeScenario   = "scenario"
	PurposePractice   = "practice"
	PurposeAssessment = "assessment"
	PurposeSummary    = "summary"
)

type OnScreenText struct {
	Title   string   `json:"title,omitempty"`
	Body    string   `json:"body,omitempty"`
	Bullets []string `json:"bullets,omitempty"`
}

func (t OnScreenText) IsEmpty() bool {
	return t.Title == "" && t.Body == "" && len(t.Bullets) == 0
}

// VisualBrief describes the on-screen visual. Subject is either a string or
// an object; the validator decides whether it is meaningful.
type VisualBrief struct {
	SceneDescription string `json:"scene_description,omitempty"`
	Subject          any    `json:"subject,omitempty"`
	Style            string `json:"style,omitempty"`
}

type AssessmentOption struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

type Assessment struct {
	Stem              string             `json:"stem"`
	Options           []AssessmentOption `json:"options"`
	CorrectFeedback   string             `json:"correct_feedback,omitempty"`
	IncorrectFeedback string             `json:"incorrect_feedback,omitempty"`
}

// SceneDraft is one attempt's normalized generator output for a block.
// Unknown extra fields from the model are dropped during normalization.
type SceneDraft struct {
	Narration          string         `json:"narration"`
	OnScreen           OnScreenText   `json:"on_screen_text"`
	DeveloperNotes     string         `json:"developer_notes,omitempty"`
	AccessibilityNotes string         `json:"accessibility_notes,omitempty"`
	Visual             VisualBrief    `json:"visual_brief"`
	Assessment         *Assessment    `json:"assessment,omitempty"`
	InteractionKind    string         `json:"interaction_kind,omitempty"`
	InteractionDetails map[string]any `json:"interaction_details,omitempty"`
}

// Scene is the accepted content unit for a block: the validated draft, or the
// last draft after retries ran out, or a synthesized placeholder.
type Scene struct {
	Index           int        `json:"index"`
	Title           string     `json:"title"`
	Purpose         string     `json:"purpose"`
	DurationSeconds int        `json:"duration_seconds"`
	Draft           SceneDraft `json:"draft"`
	Attempts        int        `json:"attempts"`
	Placeholder     bool       `json:"placeholder,omitempty"`
	ResidualIssues  []string   `json:"residual_issues,omitempty"`
	Warnings        []string   `json:"warnings,omitempty"`
}

type ValidationResult struct {
	OK       bool     `json:"ok"`
	Issues   []string `json:"issues,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

type ContinuityIssue struct {
	Kind           string   `json:"kind"`
	Description    string   `json:"description"`
	Severity       Severity `json:"severity"`
	SceneIndexes   []int    `json:"scene_indexes"`
	Recommendation string   `json:"recommendation,omitempty"`
	Evidence       string   `json:"evidence,omitempty"`
}

type ContinuityReport struct {
	Issues               []ContinuityIssue `json:"issues"`
	OverallScore         int               `json:"overall_score"`
	RequiresRegeneration bool              `json:"requires_regeneration"`
	Summary              string            `json:"summary"`
}

type GateResult struct {
	Name     string   `json:"name"`
	Passed   bool     `json:"passed"`
	Score    int      `json:"score"`
	Critical bool     `json:"critical"`
	Issues   []string `json:"issues,omitempty"`
}

type QualityReport struct {
	Gates           []GateResult `json:"gates"`
	OverallScore    int          `json:"overall_score"`
	Passed          bool         `json:"passed"`
	CriticalFailure bool         `json:"critical_failure"`
}
