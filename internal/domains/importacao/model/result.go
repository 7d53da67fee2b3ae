package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LogStatus is the outcome stored in the audit log
type LogStatus string

const (
	StatusSucesso LogStatus = "sucesso" // every submitted row written or deduplicated
	StatusParcial LogStatus = "parcial" // some rows written, some errored
	StatusErro    LogStatus = "erro"    // nothing written and at least one error
)

// ImportResult is produced once per run at the end of the write phase.
// Errors holds one message per errored row (invalid or failed write), so
// Created + Updated + len(Errors) <= TotalRows.
type ImportResult struct {
	TotalRows  int       `json:"total_rows"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Duplicates int       `json:"duplicates"`
	Invalid    int       `json:"invalid"`
	Errors     []string  `json:"errors"`
	Status     LogStatus `json:"status"`
}

// Errored is the number of rows that produced an error
func (r ImportResult) Errored() int {
	return len(r.Errors)
}

// ComputeStatus derives the audit status from the counters
func (r ImportResult) ComputeStatus() LogStatus {
	switch {
	case len(r.Errors) == 0:
		return StatusSucesso
	case r.Created+r.Updated > 0:
		return StatusParcial
	default:
		return StatusErro
	}
}

// ImportLog is the audit record persisted once per run
type ImportLog struct {
	ID                   uuid.UUID  `json:"id" db:"id"`
	UsuarioID            string     `json:"usuario_id" db:"usuario_id"`
	TotalRegistros       int        `json:"total_registros" db:"total_registros"`
	RegistrosCriados     int        `json:"registros_criados" db:"registros_criados"`
	RegistrosAtualizados int        `json:"registros_atualizados" db:"registros_atualizados"`
	RegistrosComErro     int        `json:"registros_com_erro" db:"registros_com_erro"`
	Status               LogStatus  `json:"status" db:"status"`
	DetalhesErro         *string    `json:"detalhes_erro,omitempty" db:"detalhes_erro"`
	NomeArquivo          string     `json:"nome_arquivo" db:"nome_arquivo"`
	TipoImportacao       ImportType `json:"tipo_importacao" db:"tipo_importacao"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
}

// NewImportLog builds the audit record of a finished run
func NewImportLog(run *ImportRun, result ImportResult) *ImportLog {
	var detalhes *string
	if len(result.Errors) > 0 {
		joined := strings.Join(result.Errors, "\n")
		detalhes = &joined
	}

	return &ImportLog{
		ID:                   uuid.New(),
		UsuarioID:            run.UserID,
		TotalRegistros:       result.TotalRows,
		RegistrosCriados:     result.Created,
		RegistrosAtualizados: result.Updated,
		RegistrosComErro:     result.Errored(),
		Status:               result.Status,
		DetalhesErro:         detalhes,
		NomeArquivo:          run.FileName,
		TipoImportacao:       run.Type,
		CreatedAt:            time.Now(),
	}
}
