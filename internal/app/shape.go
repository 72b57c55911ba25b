package service

import (
	"time"

	"github.com/okian/compliance/internal/domain/model"
	"github.com/okian/compliance/internal/domain/scoring"
	"github.com/okian/compliance/internal/domain/types"
)

func toProjectResponse(p model.Project, score *float64, lastAt *time.Time) types.ProjectResponse {
	return types.ProjectResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Stack:           p.Stack,
		LastScore:       score,
		LastExecutionAt: lastAt,
		CreatedAt:       p.CreatedAt,
		Classification:  scoring.ClassifyPtr(score),
	}
}

// toExecutionResponse substitutes 0 for every absent numeric.
func toExecutionResponse(e model.Execution) types.ExecutionResponse {
	return types.ExecutionResponse{
		ID:          e.ID,
		ProjectID:   e.ProjectID,
		ProjectName: e.ProjectName,
		Environment: e.Environment,
		StartedAt:   e.StartedAt,
		FinishedAt:  e.FinishedAt,
		Score:       floatOrZero(e.Score),
		Total:       intOrZero(e.Total),
		Passed:      intOrZero(e.Passed),
		Failed:      intOrZero(e.Failed),
		Errors:      intOrZero(e.Errors),
		Skipped:     intOrZero(e.Skipped),
		DurationMS:  floatOrZero(e.DurationMS),
	}
}

func toScoreHistoryResponse(h model.ScoreHistory) types.ScoreHistoryResponse {
	return types.ScoreHistoryResponse{
		ExecutionID: h.ExecutionID,
		RunnerType:  h.RunnerType,
		Score:       floatOrZero(h.Score),
		Total:       intOrZero(h.Total),
		Passed:      intOrZero(h.Passed),
		RecordedAt:  h.RecordedAt,
	}
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

// stringOr treats nil and "" alike.
func stringOr(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}
