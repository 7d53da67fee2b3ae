package service

import (
	"context"

	"github.com/hibiken/asynq"

	"backoffice-backend/internal/domains/importacao/model"
	"backoffice-backend/internal/domains/importacao/pipeline"
)

// ServiceInterface drives one import run through its states
type ServiceInterface interface {
	// Validate parses, normalizes and classifies a file; nothing is written
	Validate(ctx context.Context, in ValidateInput) (*model.ValidationReport, error)

	// Confirm runs the write phase in-process and returns the result
	Confirm(ctx context.Context, sessionID, userID string) (*model.ImportResult, error)

	// ConfirmAsync moves the run to Writing and hands the write phase to the queue
	ConfirmAsync(ctx context.Context, sessionID, userID string) (*model.ImportRun, error)

	// ExecuteWrite is the queue side of ConfirmAsync
	ExecuteWrite(ctx context.Context, sessionID, userID string) (*model.ImportResult, error)

	GetRun(ctx context.Context, sessionID, userID string) (*model.ImportRun, error)
	ListLogs(ctx context.Context, filter model.LogFilter) (*model.LogPage, error)
}

// ValidateInput is one uploaded file
type ValidateInput struct {
	Type     model.ImportType
	UserID   string
	FileName string
	Data     []byte
}

// ========================================
// COLLABORATORS
// ========================================

// Target is the persisted entity an import type writes to
type Target interface {
	pipeline.RecordWriter
	// ExistingKeys lists the natural keys already stored, loaded once per run
	ExistingKeys(ctx context.Context) ([]string, error)
}

// ReferenceProvider returns the active CCA codes
type ReferenceProvider interface {
	ActiveReferences(ctx context.Context) ([]model.ReferenceEntry, error)
}

// FileArchive keeps a copy of uploaded files
type FileArchive interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// TaskEnqueuer is satisfied by *asynq.Client
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
