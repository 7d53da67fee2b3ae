package model

import "strings"

// ImportType identifies which spreadsheet layout (and backing table) an import run targets
type ImportType string

const (
	ImportTypeDesvios      ImportType = "desvios"
	ImportTypeFuncionarios ImportType = "funcionarios"
)

// Column names used by the supported layouts
const (
	ColData                = "data"
	ColDescricaoDesvio     = "descricao_desvio"
	ColResponsavelInspecao = "responsavel_inspecao"
	ColCCACodigo           = "cca_codigo"

	ColNome         = "nome"
	ColCPF          = "cpf"
	ColFuncao       = "funcao"
	ColMatricula    = "matricula"
	ColDataAdmissao = "data_admissao"
)

// KeySeparator joins the parts of a composite natural key
const KeySeparator = "_"

// Schema describes one import layout: which columns exist, which are required,
// how each one is normalized and which columns form the natural key.
type Schema struct {
	Type           ImportType
	Columns        []string // declared order, used for stable error ordering
	Required       []string
	DateFields     []string
	CPFField       string // "" when the layout has no CPF
	UpperFields    []string
	ReferenceField string   // CCA code column, validated against the ReferenceSet
	KeyFields      []string // natural key parts
}

var schemas = map[ImportType]Schema{
	ImportTypeDesvios: {
		Type:           ImportTypeDesvios,
		Columns:        []string{ColData, ColDescricaoDesvio, ColResponsavelInspecao, ColCCACodigo},
		Required:       []string{ColData, ColDescricaoDesvio, ColResponsavelInspecao},
		DateFields:     []string{ColData},
		UpperFields:    []string{ColDescricaoDesvio},
		ReferenceField: ColCCACodigo,
		KeyFields:      []string{ColData, ColDescricaoDesvio},
	},
	ImportTypeFuncionarios: {
		Type:           ImportTypeFuncionarios,
		Columns:        []string{ColNome, ColCPF, ColFuncao, ColMatricula, ColCCACodigo, ColDataAdmissao},
		Required:       []string{ColNome, ColCPF, ColFuncao},
		DateFields:     []string{ColDataAdmissao},
		CPFField:       ColCPF,
		UpperFields:    []string{ColNome, ColFuncao},
		ReferenceField: ColCCACodigo,
		KeyFields:      []string{ColCPF},
	},
}

// SchemaFor returns the layout registered for an import type
func SchemaFor(t ImportType) (Schema, bool) {
	s, ok := schemas[t]
	return s, ok
}

// ParseImportType converts a path/query value into a known ImportType
func ParseImportType(raw string) (ImportType, error) {
	t := ImportType(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := schemas[t]; !ok {
		return "", NewUnknownImportType(raw)
	}
	return t, nil
}

// KeyOf builds the natural key of a row from already-normalized values.
// Returns "" when any key part is empty; such rows are never deduplicated.
func (s Schema) KeyOf(values map[string]string) string {
	parts := make([]string, 0, len(s.KeyFields))
	for _, f := range s.KeyFields {
		v := values[f]
		if v == "" {
			return ""
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, KeySeparator)
}

// IsRequired reports whether a column must be present and non-empty
func (s Schema) IsRequired(col string) bool {
	for _, r := range s.Required {
		if r == col {
			return true
		}
	}
	return false
}

// IsDateColumn reports whether col holds a date in any registered layout
func IsDateColumn(col string) bool {
	for _, s := range schemas {
		for _, f := range s.DateFields {
			if f == col {
				return true
			}
		}
	}
	return false
}
