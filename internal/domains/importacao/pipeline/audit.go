package pipeline

import (
	"context"

	"github.com/rs/zerolog/log"

	"backoffice-backend/internal/domains/importacao/model"
)

// ImportLogWriter persists audit records
type ImportLogWriter interface {
	Create(ctx context.Context, entry *model.ImportLog) error
}

// AuditLogger writes exactly one ImportLog per finished run
type AuditLogger struct {
	repo ImportLogWriter
}

func NewAuditLogger(repo ImportLogWriter) *AuditLogger {
	return &AuditLogger{repo: repo}
}

// Record persists the summary of a run. A failure is logged and swallowed:
// the result already reported to the user does not change.
func (a *AuditLogger) Record(ctx context.Context, run *model.ImportRun, result model.ImportResult) *model.ImportLog {
	entry := model.NewImportLog(run, result)

	if err := a.repo.Create(ctx, entry); err != nil {
		log.Error().
			Err(err).
			Str("session_id", run.ID).
			Str("tipo_importacao", string(run.Type)).
			Str("nome_arquivo", run.FileName).
			Msg("Failed to persist import log")
		return nil
	}

	log.Info().
		Str("session_id", run.ID).
		Str("status", string(entry.Status)).
		Int("total_registros", entry.TotalRegistros).
		Int("registros_criados", entry.RegistrosCriados).
		Int("registros_com_erro", entry.RegistrosComErro).
		Msg("Import log persisted")

	return entry
}
