// Package store persists finished storyboard runs. The scene payloads and
// reports are stored as opaque JSON; the pipeline owns their shape.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/chrisgaborit/storyboard-engine/internal/pipeline"
	"github.com/chrisgaborit/storyboard-engine/internal/platform/logger"
	"github.com/chrisgaborit/storyboard-engine/internal/types"
)

type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

// Open connects to the run store. A "postgres://" DSN selects the postgres
// driver; anything else is treated as a sqlite file path.
func Open(dsn string, baseLog *logger.Logger) (*Store, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	if err := db.AutoMigrate(&types.StoryboardRun{}, &types.SceneRow{}); err != nil {
		return nil, fmt.Errorf("migrate run store: %w", err)
	}
	return &Store{db: db, log: baseLog.With("component", "RunStore")}, nil
}

// SaveRun writes one run row plus its scene rows in a single transaction and
// returns the run ID.
func (s *Store) SaveRun(ctx context.Context, req pipeline.Request, result *pipeline.Result) (uuid.UUID, error) {
	if result == nil {
		return uuid.Nil, fmt.Errorf("nil result")
	}
	now := time.Now()
	status := "ready"
	if result.Quality.CriticalFailure {
		status = "rejected"
	} else if !result.Quality.Passed {
		status = "ready_with_warnings"
	}
	qualityJSON, err := toJSON(result.Quality, "quality report")
	if err != nil {
		return uuid.Nil, err
	}
	continuityJSON, err := toJSON(result.Continuity, "continuity report")
	if err != nil {
		return uuid.Nil, err
	}
	run := &types.StoryboardRun{
		ID:               uuid.New(),
		Title:            req.Title,
		Organization:     req.Organization,
		Status:           status,
		SceneCount:       len(result.Scenes),
		QualityReport:    qualityJSON,
		ContinuityReport: continuityJSON,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	rows := make([]*types.SceneRow, 0, len(result.Scenes))
	for _, scene := range result.Scenes {
		payload, err := toJSON(scene.Draft, fmt.Sprintf("scene %d draft", scene.Index))
		if err != nil {
			return uuid.Nil, err
		}
		residual, err := toJSON(scene.ResidualIssues, fmt.Sprintf("scene %d residual issues", scene.Index))
		if err != nil {
			return uuid.Nil, err
		}
		rows = append(rows, &types.SceneRow{
			ID:              uuid.New(),
			RunID:           run.ID,
			Index:           scene.Index,
			Title:           scene.Title,
			Purpose:         scene.Purpose,
			DurationSeconds: scene.DurationSeconds,
			Placeholder:     scene.Placeholder,
			Payload:         payload,
			ResidualIssues:  residual,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("create run: %w", err)
		}
		if len(rows) > 0 {
			if err := tx.Create(rows).Error; err != nil {
				return fmt.Errorf("create scenes: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	s.log.Info("run saved", "run_id", run.ID.String(), "scenes", len(rows), "status", status)
	return run.ID, nil
}

// GetRun loads a run row and its ordered scenes.
func (s *Store) GetRun(ctx context.Context, runID uuid.UUID) (*types.StoryboardRun, []*types.SceneRow, error) {
	var run types.StoryboardRun
	if err := s.db.WithContext(ctx).First(&run, "id = ?", runID).Error; err != nil {
		return nil, nil, fmt.Errorf("load run: %w", err)
	}
	var rows []*types.SceneRow
	if err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("scene_index asc").
		Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("load scenes: %w", err)
	}
	return &run, rows, nil
}

func toJSON(v any, what string) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", what, err)
	}
	return datatypes.JSON(b), nil
}
