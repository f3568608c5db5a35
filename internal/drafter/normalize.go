package drafter

import (
	"encoding/json"
	"fmt"
	"strings"

	pkgerrors "github.com/chrisgaborit/storyboard-engine/internal/pkg/errors"
	"github.com/chrisgaborit/storyboard-engine/internal/types"
)

// fieldAliases maps each canonical draft field to the model output keys that
// may carry it, in preference order. All "accept A or B or C" fallbacks live
// here instead of scattered lookup chains.
var fieldAliases = map[string][]string{
	"narration":           {"narration", "narration_text", "voiceover", "audio_script", "script"},
	"on_screen_text":      {"on_screen_text", "onscreen_text", "screen_text", "ost", "display_text"},
	"developer_notes":     {"developer_notes", "dev_notes", "build_notes", "notes"},
	"accessibility_notes": {"accessibility_notes", "a11y_notes", "accessibility"},
	"visual_brief":        {"visual_brief", "visual", "visuals", "graphics_brief"},
	"assessment":          {"assessment", "knowledge_check", "quiz", "question"},
	"interaction_kind":    {"interaction_kind", "interaction_type", "interactivity_type"},
	"interaction_details": {"interaction_details", "interaction", "interaction_spec", "interactivity"},
	"scene_description":   {"scene_description", "description", "setting"},
	"subject":             {"subject", "focus", "main_subject"},
	"style":               {"style", "visual_style", "treatment"},
	"stem":                {"stem", "question", "prompt", "question_text"},
	"options":             {"options", "choices", "answers"},
	"correct_feedback":    {"correct_feedback", "feedback_correct", "feedback_right"},
	"incorrect_feedback":  {"incorrect_feedback", "feedback_incorrect", "feedback_wrong"},
	"title":               {"title", "heading", "header"},
	"body":                {"body", "text", "content"},
	"bullets":             {"bullets", "bullet_points", "points", "items"},
}

func pick(m map[string]any, canonical string) (any, bool) {
	for _, key := range fieldAliases[canonical] {
		if v, ok := m[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func pickString(m map[string]any, canonical string) string {
	v, ok := pick(m, canonical)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func pickMap(m map[string]any, canonical string) (map[string]any, bool) {
	v, ok := pick(m, canonical)
	if !ok {
		return nil, false
	}
	mm, ok := v.(map[string]any)
	return mm, ok
}

// ParseDraftText extracts a JSON object from raw model text, tolerating a
// fenced code block wrapper and leading/trailing prose.
func ParseDraftText(text string) (map[string]any, error) {
	cleaned := stripFences(text)
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in output", pkgerrors.ErrMalformedOutput)
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrMalformedOutput, err)
	}
	return obj, nil
}

func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.Index(trimmed, "\n"); nl >= 0 {
		// drop the language tag line ("json", "JSON", ...)
		trimmed = trimmed[nl+1:]
	}
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

// Normalize maps a decoded model object onto the draft structure. Unknown
// extra fields are ignored; missing fields stay zero.
func Normalize(obj map[string]any) types.SceneDraft {
	draft := types.SceneDraft{
		Narration:          pickString(obj, "narration"),
		DeveloperNotes:     pickString(obj, "developer_notes"),
		AccessibilityNotes: pickString(obj, "accessibility_notes"),
		InteractionKind:    pickString(obj, "interaction_kind"),
	}

	if v, ok := pick(obj, "on_screen_text"); ok {
		draft.OnScreen = normalizeOnScreen(v)
	}
	if vb, ok := pickMap(obj, "visual_brief"); ok {
		draft.Visual = types.VisualBrief{
			SceneDescription: pickString(vb, "scene_description"),
			Style:            pickString(vb, "style"),
		}
		if subj, ok := pick(vb, "subject"); ok {
			draft.Visual.Subject = subj
		}
	}
	if am, ok := pickMap(obj, "assessment"); ok {
		if a := normalizeAssessment(am); a != nil {
			draft.Assessment = a
		}
	}
	if details, ok := pickMap(obj, "interaction_details"); ok && len(details) > 0 {
		draft.InteractionDetails = details
	}
	return draft
}

func normalizeOnScreen(v any) types.OnScreenText {
	switch t := v.(type) {
	case string:
		return types.OnScreenText{Body: strings.TrimSpace(t)}
	case map[string]any:
		return types.OnScreenText{
			Title:   pickString(t, "title"),
			Body:    pickString(t, "body"),
			Bullets: toStringSlice(pickAny(t, "bullets")),
		}
	}
	return types.OnScreenText{}
}

func normalizeAssessment(m map[string]any) *types.Assessment {
	a := &types.Assessment{
		Stem:              pickString(m, "stem"),
		CorrectFeedback:   pickString(m, "correct_feedback"),
		IncorrectFeedback: pickString(m, "incorrect_feedback"),
	}
	for _, raw := range toAnySlice(pickAny(m, "options")) {
		switch o := raw.(type) {
		case string:
			a.Options = append(a.Options, types.AssessmentOption{Text: strings.TrimSpace(o)})
		case map[string]any:
			opt := types.AssessmentOption{Text: pickString(o, "body")}
			if c, ok := o["correct"].(bool); ok {
				opt.Correct = c
			} else if c, ok := o["is_correct"].(bool); ok {
				opt.Correct = c
			}
			a.Options = append(a.Options, opt)
		}
	}
	if a.Stem == "" && len(a.Options) == 0 {
		return nil
	}
	return a
}

func pickAny(m map[string]any, canonical string) any {
	v, _ := pick(m, canonical)
	return v
}

func toAnySlice(v any) []any {
	a, ok := v.([]any)
	if !ok {
		return nil
	}
	return a
}

func toStringSlice(v any) []string {
	if v == nil {
		return nil
	}
	if ss, ok := v.([]string); ok {
		return ss
	}
	a, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(a))
	for _, x := range a {
		if s, ok := x.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
