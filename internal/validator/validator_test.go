package validator

import (
	"reflect"
	"strings"
	"testing"

	"github.com/chrisgaborit/storyboard-engine/internal/types"
)

const ladderContext = "Inspect every ladder before climbing. Check the rungs, rails and feet for cracks and damage."

func ladderBlock() types.BlueprintBlock {
	return types.BlueprintBlock{Title: "Ladder Inspection", Kind: "content", Purpose: types.PurposeTeach}
}

func goodDraft() types.SceneDraft {
	return types.SceneDraft{
		Narration: "Always inspect your ladder before climbing, checking the rungs and rails for damage.",
		OnScreen: types.OnScreenText{
			Title: "Safe Climbing",
			Body:  "Three points of contact at all times.",
		},
		DeveloperNotes:     "Build as a static slide.",
		AccessibilityNotes: "Alt text supplied for the ladder image.",
		Visual: types.VisualBrief{
			SceneDescription: "Warehouse floor, morning light",
			Subject:          "worker inspecting a ladder",
		},
	}
}

func newTestValidator() *Validator {
	return New("Acme Safety", "Working at Heights", 0)
}

func TestValidateAcceptsGoodDraft(t *testing.T) {
	res := newTestValidator().Validate(goodDraft(), ladderBlock(), ladderContext)
	if !res.OK {
		t.Fatalf("expected OK, got issues %v", res.Issues)
	}
}

func TestEmptyNarrationRejected(t *testing.T) {
	draft := goodDraft()
	draft.Narration = "   "
	res := newTestValidator().Validate(draft, ladderBlock(), ladderContext)
	if res.OK {
		t.Fatal("empty narration must fail")
	}
	if !containsSubstring(res.Issues, "narration is empty") {
		t.Fatalf("issues = %v", res.Issues)
	}
}

func TestOnScreenDuplicationRejected(t *testing.T) {
	draft := goodDraft()
	draft.OnScreen = types.OnScreenText{Body: draft.Narration}
	res := newTestValidator().Validate(draft, ladderBlock(), ladderContext)
	if res.OK {
		t.Fatal("on-screen text restating narration must fail")
	}
	if !containsSubstring(res.Issues, "duplicates narration") {
		t.Fatalf("issues = %v", res.Issues)
	}
}

func TestMissingDeveloperNotesIsWarningOnly(t *testing.T) {
	draft := goodDraft()
	draft.DeveloperNotes = ""
	res := newTestValidator().Validate(draft, ladderBlock(), ladderContext)
	if !res.OK {
		t.Fatalf("missing developer notes must not block: %v", res.Issues)
	}
	if !containsSubstring(res.Warnings, "developer notes") {
		t.Fatalf("warnings = %v", res.Warnings)
	}
}

func TestMeaninglessSubjectRejected(t *testing.T) {
	for _, subject := range []any{nil, "", "icon", map[string]any{"people": ""}} {
		draft := goodDraft()
		draft.Visual.Subject = subject
		res := newTestValidator().Validate(draft, ladderBlock(), ladderContext)
		if !containsSubstring(res.Issues, "meaningful subject") {
			t.Fatalf("subject %v: issues = %v", subject, res.Issues)
		}
	}
}

func TestStructuredSubjectAccepted(t *testing.T) {
	draft := goodDraft()
	draft.Visual.Subject = map[string]any{"people": []any{"a warehouse worker"}}
	res := newTestValidator().Validate(draft, ladderBlock(), ladderContext)
	if containsSubstring(res.Issues, "meaningful subject") {
		t.Fatalf("structured subject rejected: %v", res.Issues)
	}
}

func TestAssessmentRules(t *testing.T) {
	block := ladderBlock()
	block.RequiresAssessment = true

	draft := goodDraft()
	res := newTestValidator().Validate(draft, block, ladderContext)
	if !containsSubstring(res.Issues, "requires an assessment") {
		t.Fatalf("missing-assessment issue absent: %v", res.Issues)
	}

	draft.Assessment = &types.Assessment{
		Stem:    "Which check comes first?",
		Options: []types.AssessmentOption{{Text: "A"}, {Text: "B"}},
	}
	res = newTestValidator().Validate(draft, block, ladderContext)
	for _, want := range []string{"at least 3 options", "no option marked correct", "correct-answer feedback", "incorrect-answer feedback"} {
		if !containsSubstring(res.Issues, want) {
			t.Fatalf("expected issue containing %q, got %v", want, res.Issues)
		}
	}

	draft.Assessment = &types.Assessment{
		Stem: "Which check comes first?",
		Options: []types.AssessmentOption{
			{Text: "Inspect the ladder", Correct: true},
			{Text: "Climb straight up"},
			{Text: "Skip the check"},
		},
		CorrectFeedback:   "Right.",
		IncorrectFeedback: "Not quite.",
	}
	res = newTestValidator().Validate(draft, block, ladderContext)
	if !res.OK {
		t.Fatalf("complete assessment should pass: %v", res.Issues)
	}
}

func TestAccessibilityRequirementEnforced(t *testing.T) {
	block := ladderBlock()
	block.AccessibilityRequirements = []string{"Captions for all audio."}

	draft := goodDraft()
	res := newTestValidator().Validate(draft, block, ladderContext)
	if !containsSubstring(res.Issues, "accessibility notes do not address") {
		t.Fatalf("issues = %v", res.Issues)
	}

	draft.AccessibilityNotes = "Captions are burned into the video."
	res = newTestValidator().Validate(draft, block, ladderContext)
	if containsSubstring(res.Issues, "accessibility notes do not address") {
		t.Fatalf("requirement addressed but still flagged: %v", res.Issues)
	}
}

func TestInteractiveAccessibilityFallback(t *testing.T) {
	block := ladderBlock()
	block.ExpectedInteractionKind = "Tabbed Interaction"

	draft := goodDraft()
	draft.InteractionDetails = map[string]any{"tabs": []any{"Rungs", "Rails"}}
	res := newTestValidator().Validate(draft, block, ladderContext)
	if !containsSubstring(res.Issues, "keyboard or focus") {
		t.Fatalf("issues = %v", res.Issues)
	}

	draft.AccessibilityNotes = "Tabs follow a logical keyboard focus order."
	res = newTestValidator().Validate(draft, block, ladderContext)
	if !res.OK {
		t.Fatalf("keyboard note should satisfy the fallback: %v", res.Issues)
	}
}

func TestInteractiveSceneNeedsDetails(t *testing.T) {
	block := ladderBlock()
	block.ExpectedInteractionKind = "Tabbed Interaction"

	draft := goodDraft()
	draft.AccessibilityNotes = "Keyboard operable."
	res := newTestValidator().Validate(draft, block, ladderContext)
	if !containsSubstring(res.Issues, "no interaction details") {
		t.Fatalf("issues = %v", res.Issues)
	}
}

func TestInteractionKindMismatchIsWarning(t *testing.T) {
	block := ladderBlock()
	block.ExpectedInteractionKind = "Timeline"

	draft := goodDraft()
	draft.InteractionKind = "Drag and Drop"
	draft.InteractionDetails = map[string]any{"events": []any{"1990", "2005"}}
	draft.AccessibilityNotes = "Keyboard operable."
	res := newTestValidator().Validate(draft, block, ladderContext)
	if !res.OK {
		t.Fatalf("kind mismatch must not block: %v", res.Issues)
	}
	if !containsSubstring(res.Warnings, "does not match expected") {
		t.Fatalf("warnings = %v", res.Warnings)
	}
}

func TestGroundingRejected(t *testing.T) {
	draft := goodDraft()
	draft.Narration = "This ladder inspection content never references anything relevant whatsoever."
	draft.OnScreen = types.OnScreenText{Body: "Totally generic filler panel."}
	res := newTestValidator().Validate(draft, ladderBlock(), "quarterly revenue forecasts pipeline negotiations territories commissions")
	if res.OK {
		t.Fatal("ungrounded draft must fail")
	}
	if !containsSubstring(res.Issues, "not grounded") {
		t.Fatalf("issues = %v", res.Issues)
	}
}

func TestEmptyContextSkipsGrounding(t *testing.T) {
	res := newTestValidator().Validate(goodDraft(), ladderBlock(), "")
	if containsSubstring(res.Issues, "not grounded") {
		t.Fatalf("empty context must not trigger grounding: %v", res.Issues)
	}
}

func TestAnchorRejected(t *testing.T) {
	block := ladderBlock()
	block.Title = "Harness Basics"
	draft := goodDraft()
	res := newTestValidator().Validate(draft, block, ladderContext)
	if res.OK {
		t.Fatal("draft that never references org, document or scene title must fail")
	}
	if !containsSubstring(res.Issues, "missing required anchors") {
		t.Fatalf("issues = %v", res.Issues)
	}
}

func TestValidateIdempotent(t *testing.T) {
	v := newTestValidator()
	draft := goodDraft()
	draft.Narration = ""
	first := v.Validate(draft, ladderBlock(), ladderContext)
	second := v.Validate(draft, ladderBlock(), ladderContext)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("validation not deterministic:\n%+v\n%+v", first, second)
	}
}

func containsSubstring(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
