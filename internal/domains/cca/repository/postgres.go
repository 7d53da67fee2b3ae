package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"backoffice-backend/internal/domains/cca/model"
	importModel "backoffice-backend/internal/domains/importacao/model"
)

// Repository reads the CCA catalogue
type Repository interface {
	ListActive(ctx context.Context) ([]*model.CCA, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// ListActive returns every active CCA ordered by codigo
func (r *postgresRepository) ListActive(ctx context.Context) ([]*model.CCA, error) {
	query := `
		SELECT id, codigo, sigla, nome, ativo, created_at
		FROM ccas
		WHERE ativo = TRUE
		ORDER BY codigo
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active ccas: %w", err)
	}
	defer rows.Close()

	var out []*model.CCA
	for rows.Next() {
		var c model.CCA
		if err := rows.Scan(&c.ID, &c.Codigo, &c.Sigla, &c.Nome, &c.Ativo, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cca: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ccas: %w", err)
	}
	return out, nil
}

// ========================================
// IMPORT REFERENCE PROVIDER
// ========================================

// ReferenceProvider exposes active CCAs as import reference entries
type ReferenceProvider struct {
	repo Repository
}

func NewReferenceProvider(repo Repository) *ReferenceProvider {
	return &ReferenceProvider{repo: repo}
}

// ActiveReferences is called once per import run
func (p *ReferenceProvider) ActiveReferences(ctx context.Context) ([]importModel.ReferenceEntry, error) {
	ccas, err := p.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]importModel.ReferenceEntry, 0, len(ccas))
	for _, c := range ccas {
		entries = append(entries, importModel.ReferenceEntry{
			Key:  c.LookupKey(),
			Code: c.Codigo,
			ID:   c.ID.String(),
		})
	}
	return entries, nil
}
