// Package drafter produces one scene draft per attempt by calling the
// generation service. It performs no validation; the validator owns that.
package drafter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chrisgaborit/storyboard-engine/internal/clients/openai"
	pkgerrors "github.com/chrisgaborit/storyboard-engine/internal/pkg/errors"
	"github.com/chrisgaborit/storyboard-engine/internal/platform/logger"
	"github.com/chrisgaborit/storyboard-engine/internal/types"
)

const defaultTimeout = 60 * time.Second

type Drafter struct {
	ai         openai.Client
	log        *logger.Logger
	timeout    time.Duration
	structured bool
}

// New builds a Drafter. timeout bounds every generation call; zero means the
// 60s default. structured selects strict json_schema output over free text.
func New(ai openai.Client, log *logger.Logger, timeout time.Duration, structured bool) *Drafter {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Drafter{
		ai:         ai,
		log:        log.With("component", "SceneDrafter"),
		timeout:    timeout,
		structured: structured,
	}
}

// Draft runs one generation attempt for a block. priorIssues are folded into
// the instructions: rejection feedback when attempt > 1, pass-level guidance
// on a fresh first attempt.
func (d *Drafter) Draft(ctx context.Context, block types.BlueprintBlock, blockContext string, priorIssues []string, attempt int) (types.SceneDraft, error) {
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	system := systemPrompt()
	user := userPrompt(block, blockContext, priorIssues, attempt)

	var (
		obj map[string]any
		err error
	)
	if d.structured {
		obj, err = d.ai.GenerateJSON(callCtx, system, user, "scene_draft", sceneDraftSchema())
	} else {
		var text string
		text, err = d.ai.GenerateText(callCtx, system, user)
		if err == nil {
			obj, err = ParseDraftText(text)
		}
	}
	if err != nil {
		return types.SceneDraft{}, classify(ctx, err)
	}
	return Normalize(obj), nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", pkgerrors.ErrGenerationTimeout, err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, pkgerrors.ErrMalformedOutput) {
		return err
	}
	return fmt.Errorf("%w: %v", pkgerrors.ErrServiceUnavailable, err)
}

func systemPrompt() string {
	return "You write instructional storyboard scenes. Respond with a single JSON object " +
		"matching the requested fields. Ground every statement in the provided source context."
}

func userPrompt(block types.BlueprintBlock, blockContext string, priorIssues []string, attempt int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scene title: %s\nScene kind: %s\nTarget duration: %d seconds\n", block.Title, block.Kind, block.ExpectedDurationSeconds)
	if block.ExpectedInteractionKind != "" {
		fmt.Fprintf(&b, "Interaction: %s\n", block.ExpectedInteractionKind)
		if block.InteractionGuidance != "" {
			fmt.Fprintf(&b, "Interaction guidance: %s\n", block.InteractionGuidance)
		}
	}
	if block.RequiresAssessment {
		b.WriteString("Include an assessment with at least 3 options, one marked correct, and feedback for correct and incorrect answers.\n")
	}
	if len(block.AccessibilityRequirements) > 0 {
		b.WriteString("Accessibility requirements:\n")
		for _, req := range block.AccessibilityRequirements {
			fmt.Fprintf(&b, "- %s\n", req)
		}
	}
	if strings.TrimSpace(block.RawInstructions) != "" {
		fmt.Fprintf(&b, "\nAuthoring instructions:\n%s\n", block.RawInstructions)
	}
	if strings.TrimSpace(blockContext) != "" {
		fmt.Fprintf(&b, "\nSource context (ground the scene in this):\n%s\n", blockContext)
	}
	if len(priorIssues) > 0 {
		if attempt > 1 {
			b.WriteString("\nThe previous attempt was rejected. Fix every one of these issues:\n")
		} else {
			// Sequence-level findings seeded into a fresh attempt.
			b.WriteString("\nAddress these findings from an earlier pass over the storyboard:\n")
		}
		for _, issue := range priorIssues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
	}
	return b.String()
}

func sceneDraftSchema() map[string]any {
	str := map[string]any{"type": "string"}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"narration": str,
			"on_screen_text": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":   str,
					"body":    str,
					"bullets": map[string]any{"type": "array", "items": str},
				},
				"required":             []string{"title", "body", "bullets"},
				"additionalProperties": false,
			},
			"developer_notes":     str,
			"accessibility_notes": str,
			"visual_brief": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"scene_description": str,
					"subject":           str,
					"style":             str,
				},
				"required":             []string{"scene_description", "subject", "style"},
				"additionalProperties": false,
			},
			"assessment": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"stem": str,
					"options": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"text":    str,
								"correct": map[string]any{"type": "boolean"},
							},
							"required":             []string{"text", "correct"},
							"additionalProperties": false,
						},
					},
					"correct_feedback":   str,
					"incorrect_feedback": str,
				},
				"required":             []string{"stem", "options", "correct_feedback", "incorrect_feedback"},
				"additionalProperties": false,
			},
			"interaction_kind": str,
			"interaction_details": map[string]any{
				"type": "object",
				"additionalProperties": true,
			},
		},
		"required":             []string{"narration", "on_screen_text", "visual_brief"},
		"additionalProperties": false,
	}
}
