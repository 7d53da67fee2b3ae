package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	importModel "backoffice-backend/internal/domains/importacao/model"
)

const dateLayout = "2006-01-02"

var ErrFuncionarioNotFound = errors.New("funcionário não encontrado")

// Funcionario is an employee record. CPF is the natural key (###.###.###-##).
type Funcionario struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Nome         string     `json:"nome" db:"nome"`
	CPF          string     `json:"cpf" db:"cpf"`
	Funcao       string     `json:"funcao" db:"funcao"`
	Matricula    *string    `json:"matricula,omitempty" db:"matricula"`
	CCAID        *uuid.UUID `json:"cca_id,omitempty" db:"cca_id"`
	DataAdmissao *time.Time `json:"data_admissao,omitempty" db:"data_admissao"`
	Ativo        bool       `json:"ativo" db:"ativo"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// FromImportRow builds a record from a validated row; ccaID nil means unlinked
func FromImportRow(row importModel.ImportRow, ccaID *string) (*Funcionario, error) {
	f := &Funcionario{
		ID:     uuid.New(),
		Nome:   row.Get(importModel.ColNome),
		CPF:    row.Get(importModel.ColCPF),
		Funcao: row.Get(importModel.ColFuncao),
		Ativo:  true,
	}

	if m := row.Get(importModel.ColMatricula); m != "" {
		f.Matricula = &m
	}

	if d := row.Get(importModel.ColDataAdmissao); d != "" {
		t, err := time.Parse(dateLayout, d)
		if err != nil {
			return nil, fmt.Errorf("data_admissao inválida: %w", err)
		}
		f.DataAdmissao = &t
	}

	if ccaID != nil {
		id, err := uuid.Parse(*ccaID)
		if err != nil {
			return nil, fmt.Errorf("cca_id inválido: %w", err)
		}
		f.CCAID = &id
	}

	return f, nil
}
