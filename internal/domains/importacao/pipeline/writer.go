package pipeline

import (
	"context"
	"fmt"
	"strings"

	"backoffice-backend/internal/domains/importacao/model"
)

// RecordWriter is the per-entity persistence call used by the write phase.
// refID is the resolved CCA id, nil when the row is unlinked.
type RecordWriter interface {
	Create(ctx context.Context, row model.ImportRow, refID *string) error
	Update(ctx context.Context, key string, row model.ImportRow, refID *string) error
}

// WriteOutcome counts what the write phase did
type WriteOutcome struct {
	Created int
	Updated int
	Errors  []string
}

// ReconciliationWriter issues one create or update per eligible row.
// It is best effort: a failed row is recorded and the rest keep going.
type ReconciliationWriter struct {
	schema model.Schema
	writer RecordWriter
	refs   *model.ReferenceSet
}

func NewReconciliationWriter(schema model.Schema, writer RecordWriter, refs *model.ReferenceSet) *ReconciliationWriter {
	return &ReconciliationWriter{schema: schema, writer: writer, refs: refs}
}

// Write creates the valid rows then updates the update candidates, sequentially
func (w *ReconciliationWriter) Write(ctx context.Context, valid, updates []model.ValidatedRow) WriteOutcome {
	var out WriteOutcome

	for _, vr := range valid {
		if err := w.writer.Create(ctx, vr.Row, w.resolve(vr.Row)); err != nil {
			out.Errors = append(out.Errors, LineError(vr.Row.Line, err.Error()))
			continue
		}
		out.Created++
	}

	for _, vr := range updates {
		key := vr.Key
		if key == "" {
			key = w.schema.KeyOf(vr.Row.Values)
		}
		if err := w.writer.Update(ctx, key, vr.Row, w.resolve(vr.Row)); err != nil {
			out.Errors = append(out.Errors, LineError(vr.Row.Line, err.Error()))
			continue
		}
		out.Updated++
	}

	return out
}

// resolve maps the row's CCA code to its id; an absent or unknown code is nil
func (w *ReconciliationWriter) resolve(row model.ImportRow) *string {
	if w.schema.ReferenceField == "" {
		return nil
	}
	return w.refs.ResolveID(row.Get(w.schema.ReferenceField))
}

// ========================================
// RESULT
// ========================================

// LineError formats a per-row message the way the report shows it
func LineError(line int, msg string) string {
	return fmt.Sprintf("Linha %d: %s", line, msg)
}

// BuildResult merges the classification and the write outcome.
// Invalid rows come first (one entry per row), then write failures.
func BuildResult(c model.Classification, out WriteOutcome) model.ImportResult {
	errs := make([]string, 0, len(c.Invalid)+len(out.Errors))
	for _, vr := range c.Invalid {
		errs = append(errs, LineError(vr.Row.Line, strings.Join(vr.Errors, "; ")))
	}
	errs = append(errs, out.Errors...)

	result := model.ImportResult{
		TotalRows:  c.Total(),
		Created:    out.Created,
		Updated:    out.Updated,
		Duplicates: len(c.Duplicates),
		Invalid:    len(c.Invalid),
		Errors:     errs,
	}
	result.Status = result.ComputeStatus()
	return result
}
