package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"backoffice-backend/internal/domains/importacao/model"
	"backoffice-backend/internal/domains/importacao/parser"
	"backoffice-backend/internal/domains/importacao/pipeline"
	"backoffice-backend/internal/domains/importacao/repository"
	"backoffice-backend/internal/infrastructure/storage"
	"backoffice-backend/internal/shared"
)

type importService struct {
	targets    map[model.ImportType]Target
	references ReferenceProvider
	sessions   repository.SessionStore
	logs       repository.ImportLogRepository
	audit      *pipeline.AuditLogger

	// optional
	archive FileArchive
	queue   TaskEnqueuer

	maxRows int
}

// NewImportService wires the pipeline to its collaborators.
// archive and queue may be nil: archiving is skipped and ConfirmAsync fails.
func NewImportService(
	targets map[model.ImportType]Target,
	references ReferenceProvider,
	sessions repository.SessionStore,
	logs repository.ImportLogRepository,
	archive FileArchive,
	queue TaskEnqueuer,
	maxRows int,
) ServiceInterface {
	return &importService{
		targets:    targets,
		references: references,
		sessions:   sessions,
		logs:       logs,
		audit:      pipeline.NewAuditLogger(logs),
		archive:    archive,
		queue:      queue,
		maxRows:    maxRows,
	}
}

// ========================================
// VALIDATION PHASE
// ========================================

func (s *importService) Validate(ctx context.Context, in ValidateInput) (*model.ValidationReport, error) {
	schema, ok := model.SchemaFor(in.Type)
	target, hasTarget := s.targets[in.Type]
	if !ok || !hasTarget {
		return nil, model.NewUnknownImportType(string(in.Type))
	}

	run := model.NewImportRun(in.Type, in.UserID, in.FileName)
	if err := run.Transition(model.StateValidating); err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", run.ID).
		Str("user_id", in.UserID).
		Str("tipo", string(in.Type)).
		Str("file_name", in.FileName).
		Int("file_size", len(in.Data)).
		Msg("Starting import validation")

	rows, err := parser.Parse(in.FileName, bytes.NewReader(in.Data))
	if err != nil {
		return nil, err
	}
	if n := countFilled(rows); s.maxRows > 0 && n > s.maxRows {
		return nil, model.NewTooManyRows(n, s.maxRows)
	}

	s.archiveFile(ctx, run, in.Data)

	// reference data is fetched once; any failure aborts the run before classification
	entries, err := s.references.ActiveReferences(ctx)
	if err != nil {
		log.Error().Err(err).Str("session_id", run.ID).Msg("Failed to load CCA references")
		return nil, model.NewReferenceFetchError(err)
	}
	keys, err := target.ExistingKeys(ctx)
	if err != nil {
		log.Error().Err(err).Str("session_id", run.ID).Msg("Failed to load existing keys")
		return nil, model.NewExistingKeysFetchError(err)
	}

	refs := model.NewReferenceSet(entries)
	run.Rows = pipeline.Classify(schema, rows, refs, model.NewKeySet(), model.NewKeySet(keys...))
	run.TotalRows = run.Rows.Total()
	run.References = refs.Entries()

	if err := run.Transition(model.StateAwaitingConfirmation); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, run); err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", run.ID).
		Int("total", run.TotalRows).
		Int("valid", len(run.Rows.Valid)).
		Int("invalid", len(run.Rows.Invalid)).
		Int("duplicates", len(run.Rows.Duplicates)).
		Int("updates", len(run.Rows.Updates)).
		Int("skipped", run.Rows.Skipped).
		Msg("Import validated, awaiting confirmation")

	return model.NewValidationReport(run), nil
}

// archiveFile is best effort: a storage outage never blocks an import
func (s *importService) archiveFile(ctx context.Context, run *model.ImportRun, data []byte) {
	if s.archive == nil {
		return
	}

	key, err := s.archive.Upload(ctx, storage.ArchiveKey(run.ID, run.FileName), data, storage.ContentTypeFor(run.FileName))
	if err != nil {
		log.Warn().Err(err).Str("session_id", run.ID).Msg("Failed to archive uploaded file")
		return
	}
	run.FileKey = key
}

// ========================================
// WRITE PHASE
// ========================================

func (s *importService) Confirm(ctx context.Context, sessionID, userID string) (*model.ImportResult, error) {
	run, err := s.beginWrite(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	return s.write(ctx, run)
}

func (s *importService) ConfirmAsync(ctx context.Context, sessionID, userID string) (*model.ImportRun, error) {
	if s.queue == nil {
		return nil, model.NewEnqueueError(fmt.Errorf("background queue not configured"))
	}

	run, err := s.beginWrite(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(shared.ImportWritePayload{SessionID: run.ID, UserID: userID})
	if err != nil {
		return nil, model.NewEnqueueError(err)
	}

	// no retry: a failed write phase is restarted from the file
	task := asynq.NewTask(shared.TypeImportWrite, payload, asynq.MaxRetry(0), asynq.Queue(shared.QueueCritical))
	info, err := s.queue.EnqueueContext(ctx, task)
	if err != nil {
		log.Error().Err(err).Str("session_id", run.ID).Msg("Failed to enqueue import write")
		return nil, model.NewEnqueueError(err)
	}

	log.Info().
		Str("session_id", run.ID).
		Str("task_id", info.ID).
		Msg("Import write enqueued")

	return run, nil
}

func (s *importService) ExecuteWrite(ctx context.Context, sessionID, userID string) (*model.ImportResult, error) {
	run, err := s.loadOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if run.State != model.StateWriting {
		return nil, model.NewInvalidTransition(run.State, model.StateDone)
	}
	return s.write(ctx, run)
}

// beginWrite moves AwaitingConfirmation -> Writing and persists it before any
// row is written, so a second confirmation is rejected
func (s *importService) beginWrite(ctx context.Context, sessionID, userID string) (*model.ImportRun, error) {
	run, err := s.loadOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if run.State != model.StateAwaitingConfirmation {
		return nil, model.NewInvalidTransition(run.State, model.StateWriting)
	}

	claimed, err := s.sessions.Claim(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, model.NewInvalidTransition(run.State, model.StateWriting)
	}

	if err := run.Transition(model.StateWriting); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, run); err != nil {
		if relErr := s.sessions.Release(ctx, run.ID); relErr != nil {
			log.Error().Err(relErr).Str("session_id", run.ID).Msg("Failed to release import claim")
		}
		return nil, err
	}
	return run, nil
}

// write runs the Reconciliation Writer and the Import Logger, then closes the run.
// It is detached from the caller's cancellation: in-flight writes always finish.
func (s *importService) write(ctx context.Context, run *model.ImportRun) (*model.ImportResult, error) {
	ctx = context.WithoutCancel(ctx)

	schema, _ := model.SchemaFor(run.Type)
	target, ok := s.targets[run.Type]
	if !ok {
		return nil, model.NewUnknownImportType(string(run.Type))
	}

	writer := pipeline.NewReconciliationWriter(schema, target, run.ReferenceSet())
	outcome := writer.Write(ctx, run.Rows.Valid, run.Rows.Updates)
	result := pipeline.BuildResult(run.Rows, outcome)

	s.audit.Record(ctx, run, result)

	run.Result = &result
	if err := run.Transition(model.StateDone); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, run); err != nil {
		// rows are written already; the result still goes back to the user
		log.Error().Err(err).Str("session_id", run.ID).Msg("Failed to persist finished import run")
	}

	log.Info().
		Str("session_id", run.ID).
		Str("status", string(result.Status)).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("errored", result.Errored()).
		Msg("Import finished")

	return &result, nil
}

// ========================================
// QUERIES
// ========================================

func (s *importService) GetRun(ctx context.Context, sessionID, userID string) (*model.ImportRun, error) {
	return s.loadOwned(ctx, sessionID, userID)
}

func (s *importService) ListLogs(ctx context.Context, filter model.LogFilter) (*model.LogPage, error) {
	if err := filter.Normalize(); err != nil {
		return nil, err
	}

	items, total, err := s.logs.List(ctx, filter)
	if err != nil {
		return nil, model.NewListLogsError(err)
	}
	return model.NewLogPage(items, total, filter), nil
}

// loadOwned fetches a run and checks it belongs to the caller
func (s *importService) loadOwned(ctx context.Context, sessionID, userID string) (*model.ImportRun, error) {
	run, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if run.UserID != userID {
		return nil, model.ErrSessionForbidden
	}
	return run, nil
}

// countFilled counts the rows with at least one non-blank cell
func countFilled(rows []model.ImportRow) int {
	n := 0
	for _, r := range rows {
		if !r.IsEmpty() {
			n++
		}
	}
	return n
}
