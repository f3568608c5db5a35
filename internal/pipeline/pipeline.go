// Package pipeline orchestrates storyboard generation: blueprint enrichment,
// context allocation, concurrent per-block draft/validate/retry, continuity
// analysis and quality gating, with one bounded regeneration pass on a
// critical gate failure.
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/chrisgaborit/storyboard-engine/internal/allocator"
	"github.com/chrisgaborit/storyboard-engine/internal/blueprint"
	"github.com/chrisgaborit/storyboard-engine/internal/clients/openai"
	"github.com/chrisgaborit/storyboard-engine/internal/continuity"
	"github.com/chrisgaborit/storyboard-engine/internal/drafter"
	pkgerrors "github.com/chrisgaborit/storyboard-engine/internal/pkg/errors"
	"github.com/chrisgaborit/storyboard-engine/internal/platform/logger"
	"github.com/chrisgaborit/storyboard-engine/internal/quality"
	"github.com/chrisgaborit/storyboard-engine/internal/types"
	"github.com/chrisgaborit/storyboard-engine/internal/validator"
)

// Request is the caller contract input: raw outline blocks plus the free-text
// source summary and the anchor metadata used by validation.
type Request struct {
	Title        string           `json:"title"`
	Organization string           `json:"organization"`
	Summary      string           `json:"summary"`
	Blocks       []types.RawBlock `json:"blocks"`
}

// Result is the assembled storyboard plus its reports. Scenes always holds at
// least one scene per input block, in block order.
type Result struct {
	Scenes     []types.Scene          `json:"scenes"`
	Blueprint  []types.BlueprintBlock `json:"blueprint"`
	Continuity types.ContinuityReport `json:"continuity"`
	Quality    types.QualityReport    `json:"quality"`
}

type Pipeline struct {
	log     *logger.Logger
	cfg     Config
	drafter *drafter.Drafter
	gates   []quality.Gate
}

func New(baseLog *logger.Logger, ai openai.Client, cfg Config) *Pipeline {
	cfg = cfg.sanitized()
	return &Pipeline{
		log:     baseLog.With("job", "storyboard_build"),
		cfg:     cfg,
		drafter: drafter.New(ai, baseLog, cfg.draftTimeout(), cfg.StructuredOutput),
		gates:   quality.DefaultGates(),
	}
}

// Run executes the whole pipeline. The returned error is non-nil only for
// caller misuse (empty block list) or, after the bounded regeneration pass,
// a persisting critical gate failure; per-block problems are absorbed into
// fallback scenes and report issues.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if len(req.Blocks) == 0 {
		return nil, fmt.Errorf("%w: at least one block required", pkgerrors.ErrInvalidArgument)
	}

	p.log.Info("enriching blueprint", "blocks", len(req.Blocks))
	blocks := blueprint.EnrichAll(req.Blocks)

	p.log.Info("allocating source context", "summary_len", len(req.Summary))
	contexts := allocator.Allocate(req.Summary, blocks)

	v := validator.New(req.Organization, req.Title, p.cfg.OverlapThreshold)

	scenes := p.generateScenes(ctx, v, blocks, contexts, nil)
	report, scenes := continuity.Analyze(scenes)
	qualityReport := quality.Aggregate(scenes, report, p.gates)

	for pass := 0; qualityReport.CriticalFailure && pass < p.cfg.RegenerationPasses; pass++ {
		if ctx.Err() != nil {
			break
		}
		notes := remediationNotes(report, qualityReport)
		p.log.Warn("critical gate failure, regenerating sequence", "pass", pass+1, "notes", len(notes))
		scenes = p.generateScenes(ctx, v, blocks, contexts, notes)
		report, scenes = continuity.Analyze(scenes)
		qualityReport = quality.Aggregate(scenes, report, p.gates)
	}

	result := &Result{
		Scenes:     scenes,
		Blueprint:  blocks,
		Continuity: report,
		Quality:    qualityReport,
	}
	if qualityReport.CriticalFailure {
		return result, fmt.Errorf("%w: score %d", pkgerrors.ErrCriticalGateFailure, qualityReport.OverallScore)
	}
	p.log.Info("storyboard assembled", "scenes", len(scenes), "score", qualityReport.OverallScore, "passed", qualityReport.Passed)
	return result, nil
}

// generateScenes fans one retry controller out per block. Results are written
// into an index-addressed slice so final order is always block order, no
// matter which controller finishes first, and cancellation still leaves one
// scene per slot.
func (p *Pipeline) generateScenes(ctx context.Context, v *validator.Validator, blocks []types.BlueprintBlock, contexts []string, seedNotes []string) []types.Scene {
	scenes := make([]types.Scene, len(blocks))
	g := &errgroup.Group{}
	g.SetLimit(p.cfg.Concurrency)
	for i := range blocks {
		i := i
		g.Go(func() error {
			scenes[i] = p.buildScene(ctx, v, i, blocks[i], contexts[i], seedNotes)
			return nil
		})
	}
	_ = g.Wait()
	return scenes
}

// remediationNotes folds the failed run's findings into instructions for the
// regeneration pass.
func remediationNotes(report types.ContinuityReport, qualityReport types.QualityReport) []string {
	notes := []string{}
	for _, issue := range report.Issues {
		if issue.Severity == types.SeverityHigh {
			notes = append(notes, issue.Description+" — "+issue.Recommendation)
		}
	}
	for _, gate := range qualityReport.Gates {
		if gate.Critical && !gate.Passed {
			notes = append(notes, gate.Issues...)
		}
	}
	return notes
}
