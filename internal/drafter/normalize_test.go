package drafter

import (
	"errors"
	"reflect"
	"testing"

	pkgerrors "github.com/chrisgaborit/storyboard-engine/internal/pkg/errors"
)

func TestParseDraftTextFenced(t *testing.T) {
	obj, err := ParseDraftText("```json\n{\"narration\": \"hello\"}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj["narration"] != "hello" {
		t.Fatalf("narration = %v", obj["narration"])
	}
}

func TestParseDraftTextSurroundingProse(t *testing.T) {
	obj, err := ParseDraftText("Sure, here is the scene:\n{\"narration\": \"hi\"}\nLet me know!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj["narration"] != "hi" {
		t.Fatalf("narration = %v", obj["narration"])
	}
}

func TestParseDraftTextMalformed(t *testing.T) {
	for _, text := range []string{"no json here", "{broken", "```json\n```"} {
		if _, err := ParseDraftText(text); !errors.Is(err, pkgerrors.ErrMalformedOutput) {
			t.Fatalf("%q: expected ErrMalformedOutput, got %v", text, err)
		}
	}
}

func TestNormalizeAliases(t *testing.T) {
	obj := map[string]any{
		"voiceover":        "Welcome to the module.",
		"screen_text":      "Key points on screen",
		"dev_notes":        "Static slide.",
		"a11y_notes":       "Alt text provided.",
		"interaction_type": "Tabbed Interaction",
	}
	draft := Normalize(obj)
	if draft.Narration != "Welcome to the module." {
		t.Fatalf("narration = %q", draft.Narration)
	}
	if draft.OnScreen.Body != "Key points on screen" {
		t.Fatalf("on-screen body = %q", draft.OnScreen.Body)
	}
	if draft.DeveloperNotes != "Static slide." {
		t.Fatalf("developer notes = %q", draft.DeveloperNotes)
	}
	if draft.AccessibilityNotes != "Alt text provided." {
		t.Fatalf("accessibility notes = %q", draft.AccessibilityNotes)
	}
	if draft.InteractionKind != "Tabbed Interaction" {
		t.Fatalf("interaction kind = %q", draft.InteractionKind)
	}
}

func TestNormalizeOnScreenObject(t *testing.T) {
	obj := map[string]any{
		"onscreen_text": map[string]any{
			"heading":       "Ladder Safety",
			"text":          "Check before you climb.",
			"bullet_points": []any{"Rungs", "Rails", ""},
		},
	}
	draft := Normalize(obj)
	if draft.OnScreen.Title != "Ladder Safety" {
		t.Fatalf("title = %q", draft.OnScreen.Title)
	}
	if draft.OnScreen.Body != "Check before you climb." {
		t.Fatalf("body = %q", draft.OnScreen.Body)
	}
	if !reflect.DeepEqual(draft.OnScreen.Bullets, []string{"Rungs", "Rails"}) {
		t.Fatalf("bullets = %v", draft.OnScreen.Bullets)
	}
}

func TestNormalizeVisualBrief(t *testing.T) {
	obj := map[string]any{
		"visuals": map[string]any{
			"description":  "Warehouse floor",
			"main_subject": "worker on a ladder",
			"treatment":    "flat illustration",
		},
	}
	draft := Normalize(obj)
	if draft.Visual.SceneDescription != "Warehouse floor" {
		t.Fatalf("scene description = %q", draft.Visual.SceneDescription)
	}
	if draft.Visual.Subject != "worker on a ladder" {
		t.Fatalf("subject = %v", draft.Visual.Subject)
	}
	if draft.Visual.Style != "flat illustration" {
		t.Fatalf("style = %q", draft.Visual.Style)
	}
}

func TestNormalizeAssessmentVariants(t *testing.T) {
	obj := map[string]any{
		"quiz": map[string]any{
			"question": "Which check comes first?",
			"choices": []any{
				map[string]any{"text": "Inspect the ladder", "is_correct": true},
				map[string]any{"text": "Climb straight up"},
				"Ask a colleague",
			},
			"feedback_correct": "Right.",
			"feedback_wrong":   "Not quite.",
		},
	}
	draft := Normalize(obj)
	a := draft.Assessment
	if a == nil {
		t.Fatal("assessment dropped")
	}
	if a.Stem != "Which check comes first?" {
		t.Fatalf("stem = %q", a.Stem)
	}
	if len(a.Options) != 3 {
		t.Fatalf("options = %d", len(a.Options))
	}
	if !a.Options[0].Correct || a.Options[1].Correct || a.Options[2].Correct {
		t.Fatalf("correct flags wrong: %+v", a.Options)
	}
	if a.Options[2].Text != "Ask a colleague" {
		t.Fatalf("string option lost: %q", a.Options[2].Text)
	}
	if a.CorrectFeedback != "Right." || a.IncorrectFeedback != "Not quite." {
		t.Fatalf("feedback = %q / %q", a.CorrectFeedback, a.IncorrectFeedback)
	}
}

func TestNormalizeEmptyAssessmentDropped(t *testing.T) {
	draft := Normalize(map[string]any{"assessment": map[string]any{}})
	if draft.Assessment != nil {
		t.Fatalf("empty assessment should be dropped, got %+v", draft.Assessment)
	}
}

func TestNormalizeIgnoresUnknownFields(t *testing.T) {
	draft := Normalize(map[string]any{
		"narration":   "Text.",
		"confidence":  0.93,
		"temperature": "low",
	})
	if draft.Narration != "Text." {
		t.Fatalf("narration = %q", draft.Narration)
	}
}
