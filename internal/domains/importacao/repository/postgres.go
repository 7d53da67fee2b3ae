package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"backoffice-backend/internal/domains/importacao/model"
)

// postgresRepository implements ImportLogRepository on the import_logs table
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the audit log repository
func NewPostgresRepository(pool *pgxpool.Pool) ImportLogRepository {
	return &postgresRepository{pool: pool}
}

// Create inserts one audit record
func (r *postgresRepository) Create(ctx context.Context, entry *model.ImportLog) error {
	query := `
		INSERT INTO import_logs (
			id, usuario_id, total_registros, registros_criados, registros_atualizados,
			registros_com_erro, status, detalhes_erro, nome_arquivo, tipo_importacao, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.UsuarioID,
		entry.TotalRegistros,
		entry.RegistrosCriados,
		entry.RegistrosAtualizados,
		entry.RegistrosComErro,
		entry.Status,
		entry.DetalhesErro,
		entry.NomeArquivo,
		entry.TipoImportacao,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert import log: %w", err)
	}
	return nil
}

// List returns one page of audit records, newest first, plus the total count
func (r *postgresRepository) List(ctx context.Context, filter model.LogFilter) ([]*model.ImportLog, int64, error) {
	where, args := buildLogWhere(filter)

	var total int64
	countQuery := "SELECT COUNT(*) FROM import_logs" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count import logs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, usuario_id, total_registros, registros_criados, registros_atualizados,
			registros_com_erro, status, detalhes_erro, nome_arquivo, tipo_importacao, created_at
		FROM import_logs%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, filter.PageSize, filter.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list import logs: %w", err)
	}
	defer rows.Close()

	var logs []*model.ImportLog
	for rows.Next() {
		var l model.ImportLog
		if err := rows.Scan(
			&l.ID,
			&l.UsuarioID,
			&l.TotalRegistros,
			&l.RegistrosCriados,
			&l.RegistrosAtualizados,
			&l.RegistrosComErro,
			&l.Status,
			&l.DetalhesErro,
			&l.NomeArquivo,
			&l.TipoImportacao,
			&l.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan import log: %w", err)
		}
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate import logs: %w", err)
	}

	return logs, total, nil
}

// buildLogWhere renders the optional filters as a WHERE clause with positional args
func buildLogWhere(filter model.LogFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.UsuarioID != "" {
		args = append(args, filter.UsuarioID)
		conds = append(conds, fmt.Sprintf("usuario_id = $%d", len(args)))
	}
	if filter.TipoImportacao != "" {
		args = append(args, filter.TipoImportacao)
		conds = append(conds, fmt.Sprintf("tipo_importacao = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
