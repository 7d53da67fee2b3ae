package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"backoffice-backend/internal/domains/importacao/model"
)

var brDateRegex = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)

// Normalizer rewrites raw cell values into canonical form.
// It never rejects anything: malformed values are left for the Validator.
type Normalizer struct {
	schema model.Schema
}

func NewNormalizer(schema model.Schema) *Normalizer {
	return &Normalizer{schema: schema}
}

// Normalize returns a normalized copy of the row; the input is not modified.
// Applying it twice yields the same row.
func (n *Normalizer) Normalize(row model.ImportRow) model.ImportRow {
	out := row.Clone()

	for col, v := range out.Values {
		out.Values[col] = strings.TrimSpace(v)
	}

	if n.schema.CPFField != "" {
		if v, ok := out.Values[n.schema.CPFField]; ok {
			out.Values[n.schema.CPFField] = FormatCPF(v)
		}
	}

	for _, col := range n.schema.UpperFields {
		if v, ok := out.Values[col]; ok {
			out.Values[col] = strings.ToUpper(v)
		}
	}

	for _, col := range n.schema.DateFields {
		if v, ok := out.Values[col]; ok {
			out.Values[col] = reformatBRDate(v)
		}
	}

	if ref := n.schema.ReferenceField; ref != "" {
		if v, ok := out.Values[ref]; ok {
			out.Values[ref] = strings.ToUpper(v)
		}
	}

	return out
}

// OnlyDigits strips every non-digit rune
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCPF returns ###.###.###-## when the value holds exactly 11 digits,
// otherwise the value unchanged
func FormatCPF(raw string) string {
	d := OnlyDigits(raw)
	if len(d) != 11 {
		return raw
	}
	return fmt.Sprintf("%s.%s.%s-%s", d[0:3], d[3:6], d[6:9], d[9:11])
}

// reformatBRDate turns DD/MM/YYYY into YYYY-MM-DD without checking the calendar
func reformatBRDate(v string) string {
	m := brDateRegex.FindStringSubmatch(v)
	if m == nil {
		return v
	}
	return fmt.Sprintf("%s-%s-%s", m[3], m[2], m[1])
}
