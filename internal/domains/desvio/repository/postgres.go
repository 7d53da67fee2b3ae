package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"backoffice-backend/internal/domains/desvio/model"
)

// Repository persists safety deviations
type Repository interface {
	Create(ctx context.Context, d *model.Desvio) error
	// UpdateByKey matches on (data, descricao_desvio)
	UpdateByKey(ctx context.Context, d *model.Desvio) error
	ListKeys(ctx context.Context) ([]string, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, d *model.Desvio) error {
	query := `
		INSERT INTO desvios (id, data, descricao_desvio, responsavel_inspecao, cca_id)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.pool.Exec(ctx, query, d.ID, d.Data, d.DescricaoDesvio, d.ResponsavelInspecao, d.CCAID); err != nil {
		return fmt.Errorf("insert desvio: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateByKey(ctx context.Context, d *model.Desvio) error {
	query := `
		UPDATE desvios
		SET responsavel_inspecao = $3,
			cca_id = COALESCE($4, cca_id),
			updated_at = NOW()
		WHERE data = $1 AND UPPER(descricao_desvio) = $2
	`
	tag, err := r.pool.Exec(ctx, query, d.Data, d.DescricaoDesvio, d.ResponsavelInspecao, d.CCAID)
	if err != nil {
		return fmt.Errorf("update desvio: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrDesvioNotFound
	}
	return nil
}

// ListKeys returns "YYYY-MM-DD_DESCRICAO" for every stored deviation
func (r *postgresRepository) ListKeys(ctx context.Context) ([]string, error) {
	query := `SELECT to_char(data, 'YYYY-MM-DD') || '_' || UPPER(descricao_desvio) FROM desvios`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list desvio keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan desvio key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
