package repository

import (
	"context"

	"backoffice-backend/internal/domains/desvio/model"
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
	d, err := model.FromImportRow(row, refID)
	if err != nil {
		return err
	}
	return w.repo.Create(ctx, d)
}

// Update ignores key: the composite key is carried by the row itself
func (w *ImportWriter) Update(ctx context.Context, _ string, row importModel.ImportRow, refID *string) error {
	d, err := model.FromImportRow(row, refID)
	if err != nil {
		return err
	}
	return w.repo.UpdateByKey(ctx, d)
}

func (w *ImportWriter) ExistingKeys(ctx context.Context) ([]string, error) {
	return w.repo.ListKeys(ctx)
}
