package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"backoffice-backend/internal/domains/importacao/model"
)

const dateLayout = "2006-01-02"

var dateShapeRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Messages shown in the validation report
const (
	MsgRequired     = "campo obrigatório"
	MsgDateFormat   = "data deve estar no formato AAAA-MM-DD"
	MsgDateInvalid  = "data inexistente no calendário"
	MsgCPFLength    = "CPF deve conter 11 dígitos"
	MsgUnknownCCA   = "CCA '%s' não encontrado entre os CCAs ativos"
	MsgSuggestedCCA = " (você quis dizer '%s'?)"
)

// Validator accumulates human-readable errors for a row.
// It never returns an error value and never modifies the ReferenceSet.
type Validator struct {
	schema model.Schema
	refs   *model.ReferenceSet
	rules  *validation.MapRule
}

func NewValidator(schema model.Schema, refs *model.ReferenceSet) *Validator {
	v := &Validator{schema: schema, refs: refs}
	rule := v.buildRules()
	v.rules = &rule
	return v
}

func (v *Validator) buildRules() validation.MapRule {
	var keys []*validation.KeyRules

	for _, col := range v.schema.Columns {
		var rules []validation.Rule

		if v.schema.IsRequired(col) {
			rules = append(rules, validation.Required.Error(MsgRequired))
		}
		if contains(v.schema.DateFields, col) {
			rules = append(rules,
				validation.Match(dateShapeRegex).Error(MsgDateFormat),
				validation.By(calendarDate),
			)
		}
		if col == v.schema.CPFField {
			rules = append(rules, validation.By(cpfDigits))
		}

		if len(rules) > 0 {
			keys = append(keys, validation.Key(col, rules...))
		}
	}

	return validation.Map(keys...).AllowExtraKeys()
}

// Validate returns the row (with the CCA rewritten to its canonical code on
// match) and the list of errors; an empty list means the row is eligible.
func (v *Validator) Validate(row model.ImportRow) (model.ImportRow, []string) {
	out := row.Clone()
	var errs []string

	values := make(map[string]interface{}, len(v.schema.Columns))
	for _, col := range v.schema.Columns {
		values[col] = out.Get(col)
	}

	if err := validation.Validate(values, *v.rules); err != nil {
		errs = append(errs, flattenErrors(err, v.schema.Columns)...)
	}

	if ref := v.schema.ReferenceField; ref != "" {
		if code := out.Get(ref); code != "" {
			if entry, ok := v.refs.Lookup(code); ok {
				out.Values[ref] = entry.Code
			} else {
				errs = append(errs, fmt.Sprintf("%s: %s", ref, v.unknownReference(code)))
			}
		}
	}

	return out, errs
}

func (v *Validator) unknownReference(code string) string {
	msg := fmt.Sprintf(MsgUnknownCCA, code)
	if s := v.refs.Suggest(code); s != "" {
		if e, ok := v.refs.Lookup(s); ok {
			msg += fmt.Sprintf(MsgSuggestedCCA, e.Code)
		}
	}
	return msg
}

// flattenErrors turns ozzo's per-key errors into "col: message" strings,
// ordered by the schema column order
func flattenErrors(err error, order []string) []string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(verrs))
	seen := make(map[string]bool, len(verrs))
	for _, col := range order {
		if e, ok := verrs[col]; ok && e != nil {
			out = append(out, fmt.Sprintf("%s: %s", col, e.Error()))
			seen[col] = true
		}
	}

	var rest []string
	for col, e := range verrs {
		if !seen[col] && e != nil {
			rest = append(rest, fmt.Sprintf("%s: %s", col, e.Error()))
		}
	}
	sort.Strings(rest)

	return append(out, rest...)
}

func calendarDate(value interface{}) error {
	s, _ := value.(string)
	if s == "" || !dateShapeRegex.MatchString(s) {
		return nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return errors.New(MsgDateInvalid)
	}
	return nil
}

func cpfDigits(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if len(OnlyDigits(s)) != 11 {
		return errors.New(MsgCPFLength)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
