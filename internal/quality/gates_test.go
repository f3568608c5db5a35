package quality

import (
	"testing"

	"github.com/chrisgaborit/storyboard-engine/internal/types"
)

func healthyScenes() []types.Scene {
	scenes := make([]types.Scene, 4)
	for i := range scenes {
		scenes[i] = types.Scene{
			Index:   i,
			Title:   "Scene",
			Purpose: types.PurposeTeach,
			Draft:   types.SceneDraft{AccessibilityNotes: "Alt text provided."},
		}
	}
	scenes[3].Purpose = types.PurposeAssessment
	return scenes
}

func cleanContinuity() types.ContinuityReport {
	return types.ContinuityReport{OverallScore: 100}
}

func gateByName(report types.QualityReport, name string) types.GateResult {
	for _, g := range report.Gates {
		if g.Name == name {
			return g
		}
	}
	return types.GateResult{}
}

func TestAggregateAllPass(t *testing.T) {
	report := Aggregate(healthyScenes(), cleanContinuity(), nil)
	if !report.Passed || report.CriticalFailure {
		t.Fatalf("expected clean pass: %+v", report)
	}
	if report.OverallScore != 100 {
		t.Fatalf("score = %d, want 100", report.OverallScore)
	}
	if len(report.Gates) != 5 {
		t.Fatalf("expected 5 default gates, got %d", len(report.Gates))
	}
}

func TestContinuityGateCritical(t *testing.T) {
	continuity := types.ContinuityReport{
		OverallScore:         70,
		RequiresRegeneration: true,
		Issues: []types.ContinuityIssue{{
			Severity:    types.SeverityHigh,
			Description: "no teaching before application",
		}},
	}
	report := Aggregate(healthyScenes(), continuity, nil)
	if report.Passed {
		t.Fatal("failing continuity must fail the report")
	}
	if !report.CriticalFailure {
		t.Fatal("continuity is a critical gate")
	}
	gate := gateByName(report, "continuity")
	if gate.Passed || gate.Score != 70 {
		t.Fatalf("continuity gate = %+v", gate)
	}
	if len(gate.Issues) != 1 {
		t.Fatalf("gate issues = %v", gate.Issues)
	}
}

func TestCompletenessGateMajorityPlaceholders(t *testing.T) {
	scenes := healthyScenes()
	scenes[0].Placeholder = true
	scenes[1].Placeholder = true
	report := Aggregate(scenes, cleanContinuity(), nil)
	gate := gateByName(report, "completeness")
	if gate.Passed {
		t.Fatal("half placeholders must fail completeness")
	}
	if gate.Score != 50 {
		t.Fatalf("score = %d, want 50", gate.Score)
	}
	if !report.CriticalFailure {
		t.Fatal("completeness is a critical gate")
	}
}

func TestCompletenessGateMinorityPlaceholders(t *testing.T) {
	scenes := healthyScenes()
	scenes[0].Placeholder = true
	report := Aggregate(scenes, cleanContinuity(), nil)
	gate := gateByName(report, "completeness")
	if !gate.Passed {
		t.Fatalf("one placeholder in four must pass: %+v", gate)
	}
	if gate.Score != 75 {
		t.Fatalf("score = %d, want 75", gate.Score)
	}
}

func TestAssessmentGateNonCritical(t *testing.T) {
	scenes := healthyScenes()
	scenes[3].Purpose = types.PurposeSummary
	report := Aggregate(scenes, cleanContinuity(), nil)
	if report.Passed {
		t.Fatal("missing assessment must fail the report")
	}
	if report.CriticalFailure {
		t.Fatal("assessment presence is advisory, not critical")
	}
	gate := gateByName(report, "assessment-presence")
	if gate.Passed || gate.Critical {
		t.Fatalf("assessment gate = %+v", gate)
	}
}

func TestResidualIssueGate(t *testing.T) {
	scenes := healthyScenes()
	scenes[2].ResidualIssues = []string{"narration is empty"}
	report := Aggregate(scenes, cleanContinuity(), nil)
	gate := gateByName(report, "residual-issues")
	if gate.Passed {
		t.Fatal("any residual issue fails the gate")
	}
	if gate.Score != 75 {
		t.Fatalf("score = %d, want 75", gate.Score)
	}
	if report.CriticalFailure {
		t.Fatal("residual issues are not critical")
	}
}

func TestOverallScoreIsMean(t *testing.T) {
	scenes := healthyScenes()
	scenes[0].Placeholder = true // completeness 75
	continuity := cleanContinuity()
	continuity.OverallScore = 80 // continuity 80
	report := Aggregate(scenes, continuity, nil)
	// (80 + 75 + 100 + 100 + 100) / 5
	if report.OverallScore != 91 {
		t.Fatalf("score = %d, want 91", report.OverallScore)
	}
}

func TestEmptySequenceFailsHard(t *testing.T) {
	report := Aggregate(nil, cleanContinuity(), nil)
	if report.Passed || !report.CriticalFailure {
		t.Fatalf("empty sequence must hard-fail: %+v", report)
	}
}
