package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/chrisgaborit/storyboard-engine/internal/pipeline"
	"github.com/chrisgaborit/storyboard-engine/internal/platform/logger"
	"github.com/chrisgaborit/storyboard-engine/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"), logger.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		Scenes: []types.Scene{
			{Index: 0, Title: "Intro", Purpose: types.PurposeTeach, DurationSeconds: 50},
			{Index: 1, Title: "Check", Purpose: types.PurposeAssessment, DurationSeconds: 75, Placeholder: true},
		},
		Continuity: types.ContinuityReport{OverallScore: 97},
		Quality:    types.QualityReport{Passed: true, OverallScore: 95},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	req := pipeline.Request{Title: "Working at Heights", Organization: "Acme Safety"}
	runID, err := s.SaveRun(ctx, req, sampleResult())
	if err != nil {
		t.Fatalf("save run: %v", err)
	}

	run, rows, err := s.GetRun(ctx, runID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if run.Title != "Working at Heights" || run.Status != "ready" || run.SceneCount != 2 {
		t.Fatalf("run = %+v", run)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Index != 0 || rows[1].Index != 1 {
		t.Fatalf("rows out of order: %d, %d", rows[0].Index, rows[1].Index)
	}
	if !rows[1].Placeholder || rows[1].Purpose != types.PurposeAssessment {
		t.Fatalf("scene row lost fields: %+v", rows[1])
	}
}

func TestSaveRunStatusReflectsQuality(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	req := pipeline.Request{Title: "T", Organization: "O"}

	rejected := sampleResult()
	rejected.Quality = types.QualityReport{CriticalFailure: true}
	id, err := s.SaveRun(ctx, req, rejected)
	if err != nil {
		t.Fatalf("save rejected run: %v", err)
	}
	run, _, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if run.Status != "rejected" {
		t.Fatalf("status = %q, want rejected", run.Status)
	}

	warned := sampleResult()
	warned.Quality = types.QualityReport{Passed: false}
	id, err = s.SaveRun(ctx, req, warned)
	if err != nil {
		t.Fatalf("save warned run: %v", err)
	}
	run, _, err = s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if run.Status != "ready_with_warnings" {
		t.Fatalf("status = %q, want ready_with_warnings", run.Status)
	}
}

func TestSaveRunEncodeFailureSurfaces(t *testing.T) {
	s := openTestStore(t)
	result := sampleResult()
	// Channels have no JSON encoding, so this draft cannot be persisted.
	result.Scenes[0].Draft.Visual.Subject = make(chan int)
	_, err := s.SaveRun(context.Background(), pipeline.Request{Title: "T"}, result)
	if err == nil {
		t.Fatal("unencodable draft must fail the save")
	}
	if !strings.Contains(err.Error(), "encode scene 0 draft") {
		t.Fatalf("error = %v", err)
	}
}

func TestSaveRunNilResult(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.SaveRun(context.Background(), pipeline.Request{}, nil); err == nil {
		t.Fatal("nil result must error")
	}
}

func TestGetRunMissing(t *testing.T) {
	s := openTestStore(t)
	if _, _, err := s.GetRun(context.Background(), uuid.New()); err == nil {
		t.Fatal("missing run must error")
	}
}
