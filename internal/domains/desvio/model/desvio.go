package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	importModel "backoffice-backend/internal/domains/importacao/model"
)

const dateLayout = "2006-01-02"

var ErrDesvioNotFound = errors.New("desvio não encontrado")

// Desvio is a safety deviation recorded during an inspection.
// Natural key: data + "_" + descricao_desvio.
type Desvio struct {
	ID                  uuid.UUID  `json:"id" db:"id"`
	Data                time.Time  `json:"data" db:"data"`
	DescricaoDesvio     string     `json:"descricao_desvio" db:"descricao_desvio"`
	ResponsavelInspecao string     `json:"responsavel_inspecao" db:"responsavel_inspecao"`
	CCAID               *uuid.UUID `json:"cca_id,omitempty" db:"cca_id"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// Key renders the natural key the way the import pipeline computes it
func (d *Desvio) Key() string {
	return d.Data.Format(dateLayout) + importModel.KeySeparator + d.DescricaoDesvio
}

// FromImportRow builds a record from a validated row; ccaID nil means unlinked
func FromImportRow(row importModel.ImportRow, ccaID *string) (*Desvio, error) {
	data, err := time.Parse(dateLayout, row.Get(importModel.ColData))
	if err != nil {
		return nil, fmt.Errorf("data inválida: %w", err)
	}

	d := &Desvio{
		ID:                  uuid.New(),
		Data:                data,
		DescricaoDesvio:     row.Get(importModel.ColDescricaoDesvio),
		ResponsavelInspecao: row.Get(importModel.ColResponsavelInspecao),
	}

	if ccaID != nil {
		id, err := uuid.Parse(*ccaID)
		if err != nil {
			return nil, fmt.Errorf("cca_id inválido: %w", err)
		}
		d.CCAID = &id
	}

	return d, nil
}
