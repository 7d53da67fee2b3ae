package repository

import (
	"context"

	"backoffice-backend/internal/domains/importacao/model"
)

// ImportLogRepository persists and lists audit records
type ImportLogRepository interface {
	Create(ctx context.Context, entry *model.ImportLog) error
	List(ctx context.Context, filter model.LogFilter) ([]*model.ImportLog, int64, error)
}

// SessionStore keeps import runs between the validation and the confirmation request
type SessionStore interface {
	Save(ctx context.Context, run *model.ImportRun) error
	Get(ctx context.Context, id string) (*model.ImportRun, error)

	// Claim grants exclusive rights to confirm a run; only the first caller gets true
	Claim(ctx context.Context, id string) (bool, error)
	Release(ctx context.Context, id string) error
}
