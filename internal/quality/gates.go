// Package quality combines the continuity report with categorical checks over
// the assembled sequence into one pass/fail decision.
package quality

import (
	"fmt"
	"strings"

	"github.com/chrisgaborit/storyboard-engine/internal/types"
)

// Gate is one independent categorical check. Critical gates invalidate the
// whole sequence when they fail; non-critical gates only lower the score.
type Gate interface {
	Name() string
	Critical() bool
	Evaluate(scenes []types.Scene, continuity types.ContinuityReport) types.GateResult
}

// DefaultGates returns the standard gate set, continuity first.
func DefaultGates() []Gate {
	return []Gate{
		continuityGate{},
		completenessGate{},
		assessmentGate{},
		accessibilityGate{},
		residualIssueGate{},
	}
}

// Aggregate evaluates every gate and combines the outcomes: overall score is
// the arithmetic mean of gate scores, overall pass requires every gate to
// pass, and any failing critical gate marks the report as a hard rejection.
func Aggregate(scenes []types.Scene, continuity types.ContinuityReport, gates []Gate) types.QualityReport {
	if len(gates) == 0 {
		gates = DefaultGates()
	}
	report := types.QualityReport{Passed: true}
	total := 0
	for _, g := range gates {
		res := g.Evaluate(scenes, continuity)
		res.Name = g.Name()
		res.Critical = g.Critical()
		report.Gates = append(report.Gates, res)
		total += res.Score
		if !res.Passed {
			report.Passed = false
			if res.Critical {
				report.CriticalFailure = true
			}
		}
	}
	report.OverallScore = total / len(gates)
	return report
}

type continuityGate struct{}

func (continuityGate) Name() string   { return "continuity" }
func (continuityGate) Critical() bool { return true }

func (continuityGate) Evaluate(_ []types.Scene, continuity types.ContinuityReport) types.GateResult {
	issues := []string{}
	for _, i := range continuity.Issues {
		issues = append(issues, fmt.Sprintf("[%s] %s", i.Severity, i.Description))
	}
	return types.GateResult{
		Passed: !continuity.RequiresRegeneration,
		Score:  continuity.OverallScore,
		Issues: issues,
	}
}

// completenessGate checks how much of the sequence is real generated content
// rather than placeholder fallbacks. It fails hard when placeholders dominate,
// since that indicates the generation service was effectively unavailable.
type completenessGate struct{}

func (completenessGate) Name() string   { return "completeness" }
func (completenessGate) Critical() bool { return true }

func (completenessGate) Evaluate(scenes []types.Scene, _ types.ContinuityReport) types.GateResult {
	if len(scenes) == 0 {
		return types.GateResult{Passed: false, Score: 0, Issues: []string{"no scenes assembled"}}
	}
	real := 0
	issues := []string{}
	for _, s := range scenes {
		if s.Placeholder {
			issues = append(issues, fmt.Sprintf("scene %d (%s) is a placeholder", s.Index, s.Title))
			continue
		}
		real++
	}
	score := real * 100 / len(scenes)
	return types.GateResult{Passed: real*2 > len(scenes), Score: score, Issues: issues}
}

type assessmentGate struct{}

func (assessmentGate) Name() string   { return "assessment-presence" }
func (assessmentGate) Critical() bool { return false }

func (assessmentGate) Evaluate(scenes []types.Scene, _ types.ContinuityReport) types.GateResult {
	for _, s := range scenes {
		if s.Purpose == types.PurposeAssessment {
			return types.GateResult{Passed: true, Score: 100}
		}
	}
	return types.GateResult{Passed: false, Score: 0, Issues: []string{"sequence contains no assessment scene"}}
}

type accessibilityGate struct{}

func (accessibilityGate) Name() string   { return "accessibility-notes" }
func (accessibilityGate) Critical() bool { return false }

func (accessibilityGate) Evaluate(scenes []types.Scene, _ types.ContinuityReport) types.GateResult {
	if len(scenes) == 0 {
		return types.GateResult{Passed: false, Score: 0}
	}
	covered := 0
	issues := []string{}
	for _, s := range scenes {
		if strings.TrimSpace(s.Draft.AccessibilityNotes) != "" {
			covered++
			continue
		}
		issues = append(issues, fmt.Sprintf("scene %d (%s) has no accessibility notes", s.Index, s.Title))
	}
	score := covered * 100 / len(scenes)
	return types.GateResult{Passed: covered*2 >= len(scenes), Score: score, Issues: issues}
}

type residualIssueGate struct{}

func (residualIssueGate) Name() string   { return "residual-issues" }
func (residualIssueGate) Critical() bool { return false }

func (residualIssueGate) Evaluate(scenes []types.Scene, _ types.ContinuityReport) types.GateResult {
	if len(scenes) == 0 {
		return types.GateResult{Passed: false, Score: 0}
	}
	clean := 0
	issues := []string{}
	for _, s := range scenes {
		if len(s.ResidualIssues) == 0 {
			clean++
			continue
		}
		issues = append(issues, fmt.Sprintf("scene %d (%s): %s", s.Index, s.Title, strings.Join(s.ResidualIssues, "; ")))
	}
	score := clean * 100 / len(scenes)
	return types.GateResult{Passed: clean == len(scenes), Score: score, Issues: issues}
}
