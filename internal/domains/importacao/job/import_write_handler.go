package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"backoffice-backend/internal/domains/importacao/model"
	"backoffice-backend/internal/shared"
)

// WriteExecutor runs the write phase of a run already moved to Writing
type WriteExecutor interface {
	ExecuteWrite(ctx context.Context, sessionID, userID string) (*model.ImportResult, error)
}

// ImportWriteHandler consumes shared.TypeImportWrite tasks
type ImportWriteHandler struct {
	executor WriteExecutor
}

func NewImportWriteHandler(executor WriteExecutor) *ImportWriteHandler {
	return &ImportWriteHandler{executor: executor}
}

// ProcessTask writes the confirmed rows and records the import log
func (h *ImportWriteHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ImportWritePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal ImportWrite payload")
		return fmt.Errorf("unmarshal payload: %w", asynq.SkipRetry)
	}
	if payload.SessionID == "" {
		return fmt.Errorf("empty session id: %w", asynq.SkipRetry)
	}

	log.Info().
		Str("session_id", payload.SessionID).
		Str("user_id", payload.UserID).
		Msg("Processing import write")

	result, err := h.executor.ExecuteWrite(ctx, payload.SessionID, payload.UserID)
	if err != nil {
		log.Error().
			Err(err).
			Str("session_id", payload.SessionID).
			Msg("Import write failed")
		// the run cannot be resumed; retrying would only repeat the rejection
		return fmt.Errorf("execute write: %v: %w", err, asynq.SkipRetry)
	}

	log.Info().
		Str("session_id", payload.SessionID).
		Str("status", string(result.Status)).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("errored", result.Errored()).
		Msg("Import write completed")

	return nil
}
