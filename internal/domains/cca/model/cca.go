package model

import (
	"time"

	"github.com/google/uuid"
)

// CCA is a cost/activity center (construction site) used to tag records
type CCA struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Codigo    string    `json:"codigo" db:"codigo"`
	Sigla     *string   `json:"sigla,omitempty" db:"sigla"` // short code accepted in spreadsheets
	Nome      string    `json:"nome" db:"nome"`
	Ativo     bool      `json:"ativo" db:"ativo"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LookupKey is the code users type in spreadsheets: the sigla when set, the codigo otherwise
func (c *CCA) LookupKey() string {
	if c.Sigla != nil && *c.Sigla != "" {
		return *c.Sigla
	}
	return c.Codigo
}
