package pipeline

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/chrisgaborit/storyboard-engine/internal/pkg/errors"
	"github.com/chrisgaborit/storyboard-engine/internal/types"
	"github.com/chrisgaborit/storyboard-engine/internal/validator"
)

// buildScene is the per-block retry controller: an explicit state loop of
// Attempting(n) -> Validated | Attempting(n+1) | Exhausted. The last draft is
// kept even when retries run out; a placeholder is synthesized only when no
// attempt ever produced a draft. seedNotes carry remediation context from an
// earlier regeneration pass.
func (p *Pipeline) buildScene(ctx context.Context, v *validator.Validator, index int, block types.BlueprintBlock, blockContext string, seedNotes []string) types.Scene {
	log := p.log.With("scene", index, "title", block.Title)

	var (
		lastDraft  *types.SceneDraft
		lastResult types.ValidationResult
	)
	notes := seedNotes
	attempts := 0
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			break
		}
		attempts = attempt
		draft, err := p.drafter.Draft(ctx, block, blockContext, notes, attempt)
		if err != nil {
			log.Warn("draft attempt failed", "attempt", attempt, "error", err.Error())
			continue
		}
		result := v.Validate(draft, block, blockContext)
		lastDraft = &draft
		lastResult = result
		if result.OK {
			for _, w := range result.Warnings {
				log.Debug("draft warning", "attempt", attempt, "warning", w)
			}
			return p.acceptedScene(index, block, draft, attempts, result)
		}
		log.Info("draft rejected", "attempt", attempt, "issues", strings.Join(result.Issues, "; "))
		notes = appendUnique(seedNotes, result.Issues)
	}

	if lastDraft != nil {
		log.Warn("keeping last draft", "error", pkgerrors.ErrExhaustedRetries.Error(), "attempts", attempts, "residual_issues", len(lastResult.Issues))
		scene := p.acceptedScene(index, block, *lastDraft, attempts, lastResult)
		scene.ResidualIssues = lastResult.Issues
		return scene
	}

	log.Warn("no draft produced, synthesizing placeholder", "attempts", attempts)
	return placeholderScene(index, block, attempts)
}

func (p *Pipeline) acceptedScene(index int, block types.BlueprintBlock, draft types.SceneDraft, attempts int, result types.ValidationResult) types.Scene {
	return types.Scene{
		Index:           index,
		Title:           block.Title,
		Purpose:         block.Purpose,
		DurationSeconds: block.ExpectedDurationSeconds,
		Draft:           draft,
		Attempts:        attempts,
		Warnings:        result.Warnings,
	}
}

// placeholderScene fills a block whose every attempt errored, so the output
// never has a gap.
func placeholderScene(index int, block types.BlueprintBlock, attempts int) types.Scene {
	body := strings.TrimSpace(block.RawInstructions)
	if body == "" {
		body = "Content for this scene could not be generated."
	}
	return types.Scene{
		Index:           index,
		Title:           block.Title,
		Purpose:         block.Purpose,
		DurationSeconds: block.ExpectedDurationSeconds,
		Attempts:        attempts,
		Placeholder:     true,
		ResidualIssues:  []string{fmt.Sprintf("generation failed after %d attempt(s); placeholder content in use", attempts)},
		Draft: types.SceneDraft{
			Narration: fmt.Sprintf("%s. %s", block.Title, body),
			OnScreen:  types.OnScreenText{Title: block.Title, Body: body},
			Visual:    types.VisualBrief{SceneDescription: "Simple title slide", Subject: block.Title},
		},
	}
}

func appendUnique(base, extra []string) []string {
	out := append([]string{}, base...)
	seen := map[string]bool{}
	for _, s := range out {
		seen[s] = true
	}
	for _, s := range extra {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
