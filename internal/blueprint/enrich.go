// Package blueprint turns raw outline blocks into enriched generation
// contracts. Enrichment is deterministic: every input has a fallback, so it
// never fails.
package blueprint

import (
	"regexp"
	"strings"

	"github.com/chrisgaborit/storyboard-engine/internal/types"
)

const defaultDurationSeconds = 50

// Base durations for known block kinds, keyed by normalized kind.
var kindDurations = map[string]int{
	"welcome":         40,
	"objectives":      45,
	"content":         50,
	"summary":         55,
	"video":           70,
	"timeline":        75,
	"knowledge check": 75,
	"tabs":            90,
	"scenario":        90,
}

// rule is one step of an ordered regex cascade; the first match wins.
type rule struct {
	pattern *regexp.Regexp
	result  string
}

type durationRule struct {
	pattern *regexp.Regexp
	seconds int
}

// Fallback duration inference when the kind table misses.
var durationRules = []durationRule{
	{regexp.MustCompile(`(?i)timeline`), 75},
	{regexp.MustCompile(`(?i)tab`), 90},
	{regexp.MustCompile(`(?i)scenario`), 90},
	{regexp.MustCompile(`(?i)summary`), 55},
}

// Assessment timing wins over base-kind timing.
var assessmentDurationRules = []durationRule{
	{regexp.MustCompile(`(?i)scenario|case\s*study`), 95},
	{regexp.MustCompile(`(?i)drag|multi[\s-]*select|mrq`), 90},
}

const assessmentDefaultDuration = 75

var assessmentPattern = regexp.MustCompile(`(?i)knowledge\s*check|assessment|quiz|mcq|mrq|question|drag|scenario`)

// Interaction kinds when the block carries an assessment.
var assessedInteractionRules = []rule{
	{regexp.MustCompile(`(?i)scenario|case\s*study`), "Scenario MCQ"},
	{regexp.MustCompile(`(?i)multi[\s-]*select|mrq|multiple\s*response`), "Multiple Response"},
	{regexp.MustCompile(`(?i)drag`), "Drag and Drop"},
	{regexp.MustCompile(`(?i)true\s*/?\s*false`), "True/False"},
}

const assessedInteractionDefault = "MCQ"

// Interaction kinds for non-assessment blocks. No match means no interaction.
var interactionRules = []rule{
	{regexp.MustCompile(`(?i)scenario|case\s*study`), "Scenario"},
	{regexp.MustCompile(`(?i)tab`), "Tabbed Interaction"},
	{regexp.MustCompile(`(?i)timeline`), "Timeline"},
	{regexp.MustCompile(`(?i)click[\s-]*(to[\s-]*)?reveal|flip\s*card`), "Click to Reveal"},
	{regexp.MustCompile(`(?i)accordion`), "Accordion"},
	{regexp.MustCompile(`(?i)simulat`), "Simulation"},
	{regexp.MustCompile(`(?i)slider`), "Slider"},
	{regexp.MustCompile(`(?i)video|animation`), "Video"},
}

var interactionGuidance = map[string]string{
	"Tabbed Interaction": "Create at least three tabs with distinct labels and a logical keyboard focus order.",
	"Timeline":           "Present events in chronological order with a clear marker for each point.",
	"Click to Reveal":    "Keep each revealed panel short and label every trigger with its topic.",
	"Accordion":          "Use one accordion section per sub-topic with descriptive headings.",
	"Simulation":         "Walk the learner through the task one decision at a time with feedback at each step.",
	"Slider":             "Map the slider range to a single variable and describe both extremes.",
	"Video":              "Keep the segment under two minutes and script a transcript alongside it.",
	"Scenario":           "Anchor the scenario in a realistic workplace situation with a named decision point.",
	"Scenario MCQ":       "Pose the question inside the scenario narrative and make every option plausible.",
	"Multiple Response":  "State how many options the learner must pick and make distractors distinct.",
	"Drag and Drop":      "Limit targets to five or fewer and give each draggable a short unambiguous label.",
	"True/False":         "Write an unambiguous statement and explain the reasoning in the feedback.",
	"MCQ":                "Write one clearly correct option and three plausible distractors.",
}

// Interaction kinds that oblige keyboard and alt-text accessibility notes.
var interactivePattern = regexp.MustCompile(`(?i)tab|timeline|click|drag|scenario|accordion|simulat|slider|reveal`)

var defaultAccessibilityRequirements = []string{
	"Keyboard navigation must reach every interactive element in a logical order.",
	"Alt text or a transcript must be provided for all visual and audio content.",
}

// Scene purpose drives the continuity rules downstream.
var purposeRules = []rule{
	{regexp.MustCompile(`(?i)knowledge\s*check|assessment|quiz|mcq|mrq|test`), types.PurposeAssessment},
	{regexp.MustCompile(`(?i)scenario|case\s*study`), types.PurposeScenario},
	{regexp.MustCompile(`(?i)example|demonstrat|worked`), types.PurposeExample},
	{regexp.MustCompile(`(?i)practice|activity|exercise|try\s*it`), types.PurposePractice},
	{regexp.MustCompile(`(?i)summary|recap|conclusion|wrap[\s-]*up`), types.PurposeSummary},
}

func firstMatch(rules []rule, text string) (string, bool) {
	for _, r := range rules {
		if r.pattern.MatchString(text) {
			return r.result, true
		}
	}
	return "", false
}

// Enrich derives the generation contract for one raw block. blockIndex is
// the block's zero-based position, used only for the default page fallback.
func Enrich(raw types.RawBlock, blockIndex int) types.BlueprintBlock {
	title := strings.TrimSpace(raw.Title)
	kind := strings.TrimSpace(raw.Kind)
	content := strings.TrimSpace(raw.Content)
	haystack := title + " " + kind + " " + content

	requiresAssessment := assessmentPattern.MatchString(haystack)
	if raw.RequiresAssessment != nil {
		requiresAssessment = *raw.RequiresAssessment
	}

	interactionKind := inferInteractionKind(haystack, requiresAssessment)
	if strings.TrimSpace(raw.InteractionKind) != "" {
		interactionKind = strings.TrimSpace(raw.InteractionKind)
	}

	guidance := interactionGuidance[interactionKind]
	if strings.TrimSpace(raw.InteractionGuidance) != "" {
		guidance = strings.TrimSpace(raw.InteractionGuidance)
	}

	duration := deriveDuration(kind, title, requiresAssessment, haystack)
	if raw.DurationSeconds > 0 {
		duration = raw.DurationSeconds
	}

	var accessibility []string
	if len(raw.AccessibilityRequirements) > 0 {
		accessibility = append(accessibility, raw.AccessibilityRequirements...)
	} else if interactionKind != "" && interactivePattern.MatchString(interactionKind) {
		accessibility = append(accessibility, defaultAccessibilityRequirements...)
	}

	purpose := types.PurposeTeach
	if requiresAssessment {
		purpose = types.PurposeAssessment
	} else if p, ok := firstMatch(purposeRules, haystack); ok {
		purpose = p
	}

	pages := ParsePages(raw.Pages)
	if len(pages) == 0 {
		pages = []int{blockIndex + 1}
	}

	return types.BlueprintBlock{
		Pages:                     pages,
		Title:                     title,
		Kind:                      kind,
		RawInstructions:           content,
		Purpose:                   purpose,
		ExpectedDurationSeconds:   duration,
		RequiresAssessment:        requiresAssessment,
		ExpectedInteractionKind:   interactionKind,
		InteractionGuidance:       guidance,
		AccessibilityRequirements: accessibility,
		Keywords:                  ExtractKeywords(title+" "+kind+" "+content, maxKeywords),
		ContinuityGroupID:         strings.TrimSpace(raw.ContinuityGroupID),
	}
}

// EnrichAll enriches every raw block in order.
func EnrichAll(raws []types.RawBlock) []types.BlueprintBlock {
	out := make([]types.BlueprintBlock, len(raws))
	for i, raw := range raws {
		out[i] = Enrich(raw, i)
	}
	return out
}

func deriveDuration(kind, title string, requiresAssessment bool, haystack string) int {
	if requiresAssessment {
		for _, r := range assessmentDurationRules {
			if r.pattern.MatchString(haystack) {
				return r.seconds
			}
		}
		return assessmentDefaultDuration
	}
	if secs, ok := kindDurations[strings.ToLower(kind)]; ok {
		return secs
	}
	probe := kind + " " + title
	for _, r := range durationRules {
		if r.pattern.MatchString(probe) {
			return r.seconds
		}
	}
	return defaultDurationSeconds
}

func inferInteractionKind(haystack string, requiresAssessment bool) string {
	if requiresAssessment {
		if k, ok := firstMatch(assessedInteractionRules, haystack); ok {
			return k
		}
		return assessedInteractionDefault
	}
	if k, ok := firstMatch(interactionRules, haystack); ok {
		return k
	}
	return ""
}

// IsInteractiveKind reports whether an interaction kind obliges interactive
// accessibility notes (keyboard/focus).
func IsInteractiveKind(kind string) bool {
	return kind != "" && interactivePattern.MatchString(kind)
}

// GuidanceFor returns the default authoring constraint for an interaction
// kind, or "" when none is defined.
func GuidanceFor(kind string) string {
	return interactionGuidance[kind]
}
