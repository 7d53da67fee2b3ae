package repository

import (
	"context"

	"backoffice-backend/internal/domains/funcionario/model"
	importModel "backoffice-backend/internal/domains/importacao/model"
)

// ImportWriter adapts the repository to the import write phase
type ImportWriter struct {
	repo Repository
}

func NewImportWriter(repo Repository) *ImportWriter {
	return &ImportWriter{repo: repo}
}

func (w *ImportWriter) Create(ctx context.Context, row importModel.ImportRow, refID *string) error {
	f, err := model.FromImportRow(row, refID)
	if err != nil {
		return err
	}
	return w.repo.Create(ctx, f)
}

// Update uses the CPF natural key
func (w *ImportWriter) Update(ctx context.Context, key string, row importModel.ImportRow, refID *string) error {
	f, err := model.FromImportRow(row, refID)
	if err != nil {
		return err
	}
	return w.repo.UpdateByCPF(ctx, key, f)
}

// ExistingKeys returns the CPFs already stored
func (w *ImportWriter) ExistingKeys(ctx context.Context) ([]string, error) {
	return w.repo.ListCPFs(ctx)
}
