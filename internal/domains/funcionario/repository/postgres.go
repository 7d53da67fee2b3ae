package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"backoffice-backend/internal/domains/funcionario/model"
)

// Repository persists employees
type Repository interface {
	Create(ctx context.Context, f *model.Funcionario) error
	// UpdateByCPF overwrites the imported fields of the employee with that CPF
	UpdateByCPF(ctx context.Context, cpf string, f *model.Funcionario) error
	ListCPFs(ctx context.Context) ([]string, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, f *model.Funcionario) error {
	query := `
		INSERT INTO funcionarios (id, nome, cpf, funcao, matricula, cca_id, data_admissao, ativo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		f.ID, f.Nome, f.CPF, f.Funcao, f.Matricula, f.CCAID, f.DataAdmissao, f.Ativo,
	)
	if err != nil {
		return fmt.Errorf("insert funcionario: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateByCPF(ctx context.Context, cpf string, f *model.Funcionario) error {
	query := `
		UPDATE funcionarios
		SET nome = $2,
			funcao = $3,
			matricula = COALESCE($4, matricula),
			cca_id = COALESCE($5, cca_id),
			data_admissao = COALESCE($6, data_admissao),
			updated_at = NOW()
		WHERE cpf = $1
	`
	tag, err := r.pool.Exec(ctx, query, cpf, f.Nome, f.Funcao, f.Matricula, f.CCAID, f.DataAdmissao)
	if err != nil {
		return fmt.Errorf("update funcionario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrFuncionarioNotFound
	}
	return nil
}

func (r *postgresRepository) ListCPFs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT cpf FROM funcionarios`)
	if err != nil {
		return nil, fmt.Errorf("list cpfs: %w", err)
	}
	defer rows.Close()

	var cpfs []string
	for rows.Next() {
		var cpf string
		if err := rows.Scan(&cpf); err != nil {
			return nil, fmt.Errorf("scan cpf: %w", err)
		}
		cpfs = append(cpfs, cpf)
	}
	return cpfs, rows.Err()
}
