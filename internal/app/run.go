package service

import (
	"context"

	"github.com/okian/compliance/internal/domain/types"
	"github.com/okian/compliance/pkg/logger"
	"github.com/okian/compliance/pkg/metrics"
)

// RunStatus is the outcome kind of a run trigger.
type RunStatus int

const (
	// RunEngineUnavailable means this deployment has no audit engine.
	RunEngineUnavailable RunStatus = iota
)

// EngineUnavailableMessage tells callers where to find existing data instead.
const EngineUnavailableMessage = "Motor de auditoria nao disponivel nesta versao. " +
	"Consulte os dados existentes via GET /api/projects e /api/executions."

// RunOutcome is the result of TriggerRun.
type RunOutcome struct {
	Status  RunStatus
	Message string
}

// TriggerRun never starts an audit: the engine is an external collaborator
// that is not part of this deployment. The request is logged and rejected.
func (s *Service) TriggerRun(ctx context.Context, req types.RunRequest) RunOutcome {
	metrics.RecordRunRejected()
	s.logger.Info(ctx, "run request rejected: audit engine unavailable",
		logger.String("project_name", req.ProjectName),
		logger.Any("types", req.Types),
		logger.Bool("confirm", req.Confirm))
	return RunOutcome{Status: RunEngineUnavailable, Message: EngineUnavailableMessage}
}
