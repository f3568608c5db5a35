// Package validator checks scene drafts against their block contracts. All
// rules are pure: the same draft, block and context always produce the same
// result.
package validator

import (
	"fmt"
	"math"
	"strings"

	"github.com/chrisgaborit/storyboard-engine/internal/blueprint"
	"github.com/chrisgaborit/storyboard-engine/internal/types"
)

const (
	DefaultOverlapThreshold = 0.8
	minSubjectLength        = 5
	groundingTermLimit      = 64
)

type Validator struct {
	// OverlapThreshold is the on-screen/narration word-overlap ratio above
	// which the on-screen text counts as restating the narration.
	OverlapThreshold float64
	Organization     string
	DocumentTitle    string
}

func New(organization, documentTitle string, overlapThreshold float64) *Validator {
	if overlapThreshold <= 0 || overlapThreshold > 1 {
		overlapThreshold = DefaultOverlapThreshold
	}
	return &Validator{
		OverlapThreshold: overlapThreshold,
		Organization:     organization,
		DocumentTitle:    documentTitle,
	}
}

// Validate applies every rule and collects hard issues and advisory warnings.
func (v *Validator) Validate(draft types.SceneDraft, block types.BlueprintBlock, blockContext string) types.ValidationResult {
	res := types.ValidationResult{Issues: []string{}, Warnings: []string{}}

	narration := strings.TrimSpace(draft.Narration)
	if narration == "" {
		res.Issues = append(res.Issues, "narration is empty")
	}

	onScreen := onScreenText(draft.OnScreen)
	if onScreen == "" {
		res.Issues = append(res.Issues, "on-screen text is empty")
	} else if narration != "" {
		if ratio := overlapRatio(onScreen, narration); ratio > v.OverlapThreshold {
			res.Issues = append(res.Issues, fmt.Sprintf("on-screen text duplicates narration (overlap %.2f); it must complement, not restate, the narration", ratio))
		}
	}

	if strings.TrimSpace(draft.DeveloperNotes) == "" {
		res.Warnings = append(res.Warnings, "developer notes are missing")
	}

	v.checkAccessibility(draft, block, &res)
	v.checkVisualBrief(draft, &res)

	if block.RequiresAssessment {
		checkAssessment(draft.Assessment, &res)
	}

	checkInteraction(draft, block, &res)

	if issue, ok := groundingIssue(draft, blockContext); !ok {
		res.Issues = append(res.Issues, issue)
	}
	if issue, ok := v.anchorIssue(draft, block); !ok {
		res.Issues = append(res.Issues, issue)
	}

	res.OK = len(res.Issues) == 0
	return res
}

func (v *Validator) checkAccessibility(draft types.SceneDraft, block types.BlueprintBlock, res *types.ValidationResult) {
	notes := strings.ToLower(draft.AccessibilityNotes)
	if len(block.AccessibilityRequirements) > 0 {
		for _, req := range block.AccessibilityRequirements {
			keyword := leadingKeyword(req)
			if keyword == "" {
				continue
			}
			if !strings.Contains(notes, keyword) {
				res.Issues = append(res.Issues, fmt.Sprintf("accessibility notes do not address requirement %q", req))
			}
		}
		return
	}
	if blueprint.IsInteractiveKind(block.ExpectedInteractionKind) {
		if !strings.Contains(notes, "keyboard") && !strings.Contains(notes, "focus") {
			res.Issues = append(res.Issues, "interactive scene accessibility notes must cover keyboard or focus handling")
		}
		return
	}
	if strings.TrimSpace(draft.AccessibilityNotes) == "" {
		res.Warnings = append(res.Warnings, "accessibility notes are empty")
	}
}

func (v *Validator) checkVisualBrief(draft types.SceneDraft, res *types.ValidationResult) {
	if strings.TrimSpace(draft.Visual.SceneDescription) == "" {
		res.Warnings = append(res.Warnings, "visual brief has no scene description")
	}
	if !meaningfulSubject(draft.Visual.Subject) {
		res.Issues = append(res.Issues, "visual brief has no meaningful subject")
	}
}

func checkAssessment(a *types.Assessment, res *types.ValidationResult) {
	if a == nil {
		res.Issues = append(res.Issues, "block requires an assessment but the draft has none")
		return
	}
	if len(a.Options) < 3 {
		res.Issues = append(res.Issues, "assessment needs at least 3 options")
	}
	correct := 0
	for _, opt := range a.Options {
		if opt.Correct {
			correct++
		}
	}
	if correct == 0 {
		res.Issues = append(res.Issues, "assessment has no option marked correct")
	}
	if strings.TrimSpace(a.CorrectFeedback) == "" {
		res.Issues = append(res.Issues, "assessment is missing correct-answer feedback")
	}
	if strings.TrimSpace(a.IncorrectFeedback) == "" {
		res.Issues = append(res.Issues, "assessment is missing incorrect-answer feedback")
	}
}

func checkInteraction(draft types.SceneDraft, block types.BlueprintBlock, res *types.ValidationResult) {
	expected := strings.TrimSpace(block.ExpectedInteractionKind)
	if expected == "" {
		return
	}
	got := strings.TrimSpace(draft.InteractionKind)
	if got != "" && !samePrefix(expected, got) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("interaction kind %q does not match expected %q", got, expected))
	}
	if blueprint.IsInteractiveKind(expected) && len(draft.InteractionDetails) == 0 {
		res.Issues = append(res.Issues, fmt.Sprintf("expected %s interaction but the draft carries no interaction details", expected))
	}
}

// groundingIssue enforces term reuse from the supplied source context: when
// the context yields terms, at least min(4, ceil(0.2*termCount)) of them must
// appear in the draft's narrative text.
func groundingIssue(draft types.SceneDraft, blockContext string) (string, bool) {
	terms := blueprint.ExtractKeywords(blockContext, groundingTermLimit)
	if len(terms) == 0 {
		return "", true
	}
	required := int(math.Ceil(0.2 * float64(len(terms))))
	if required > 4 {
		required = 4
	}
	tokens := draftTokenSet(draft)
	hits := 0
	for _, term := range terms {
		if tokens[term] {
			hits++
		}
	}
	if hits >= required {
		return "", true
	}
	return fmt.Sprintf("draft is not grounded in the provided context (%d/%d source terms present)", hits, required), false
}

// anchorIssue requires at least one token from the organization name,
// document title or block title to surface in the narrative text.
func (v *Validator) anchorIssue(draft types.SceneDraft, block types.BlueprintBlock) (string, bool) {
	anchorText := strings.Join([]string{v.Organization, v.DocumentTitle, block.Title}, " ")
	anchors := blueprint.ExtractKeywords(anchorText, groundingTermLimit)
	if len(anchors) == 0 {
		return "", true
	}
	tokens := tokenSet(narrativeText(draft))
	for _, a := range anchors {
		if tokens[a] {
			return "", true
		}
	}
	return "missing required anchors (organization, document or scene title never referenced)", false
}

func leadingKeyword(requirement string) string {
	for _, tok := range blueprint.Tokenize(requirement) {
		if len(tok) > 3 {
			return tok
		}
	}
	return ""
}

func meaningfulSubject(subject any) bool {
	switch s := subject.(type) {
	case string:
		return len(strings.TrimSpace(s)) > minSubjectLength
	case map[string]any:
		for _, v := range s {
			switch vv := v.(type) {
			case string:
				if strings.TrimSpace(vv) != "" {
					return true
				}
			case []any:
				if len(vv) > 0 {
					return true
				}
			}
		}
	}
	return false
}

func samePrefix(expected, got string) bool {
	ew := blueprint.Tokenize(expected)
	gw := blueprint.Tokenize(got)
	if len(ew) == 0 || len(gw) == 0 {
		return false
	}
	return strings.HasPrefix(gw[0], ew[0]) || strings.HasPrefix(ew[0], gw[0])
}

func onScreenText(t types.OnScreenText) string {
	parts := []string{t.Title, t.Body}
	parts = append(parts, t.Bullets...)
	return strings.TrimSpace(strings.Join(parts, " "))
}

func narrativeText(draft types.SceneDraft) string {
	parts := []string{draft.Narration, onScreenText(draft.OnScreen)}
	return strings.Join(parts, " ")
}

func draftTokenSet(draft types.SceneDraft) map[string]bool {
	parts := []string{narrativeText(draft), draft.DeveloperNotes, draft.AccessibilityNotes}
	if draft.Assessment != nil {
		parts = append(parts, draft.Assessment.Stem)
	}
	return tokenSet(strings.Join(parts, " "))
}

func tokenSet(text string) map[string]bool {
	out := map[string]bool{}
	for _, tok := range blueprint.Tokenize(text) {
		out[tok] = true
	}
	return out
}

// overlapRatio is the share of on-screen words already present in the
// narration.
func overlapRatio(onScreen, narration string) float64 {
	onTokens := blueprint.Tokenize(onScreen)
	if len(onTokens) == 0 {
		return 0
	}
	narrSet := tokenSet(narration)
	hits := 0
	for _, tok := range onTokens {
		if narrSet[tok] {
			hits++
		}
	}
	return float64(hits) / float64(len(onTokens))
}
