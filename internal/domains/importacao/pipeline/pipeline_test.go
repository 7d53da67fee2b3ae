package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice-backend/internal/domains/importacao/model"
)

// ========================================
// FAKES
// ========================================

type call struct {
	op    string
	key   string
	line  int
	refID *string
}

type fakeRecordWriter struct {
	calls    []call
	failLine map[int]error
}

func (f *fakeRecordWriter) Create(_ context.Context, row model.ImportRow, refID *string) error {
	f.calls = append(f.calls, call{op: "create", line: row.Line, refID: refID})
	return f.failLine[row.Line]
}

func (f *fakeRecordWriter) Update(_ context.Context, key string, row model.ImportRow, refID *string) error {
	f.calls = append(f.calls, call{op: "update", key: key, line: row.Line, refID: refID})
	return f.failLine[row.Line]
}

type fakeLogRepo struct {
	entries []*model.ImportLog
	err     error
}

func (f *fakeLogRepo) Create(_ context.Context, entry *model.ImportLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func desvios(t *testing.T) model.Schema {
	t.Helper()
	s, ok := model.SchemaFor(model.ImportTypeDesvios)
	require.True(t, ok)
	return s
}

func funcionarios(t *testing.T) model.Schema {
	t.Helper()
	s, ok := model.SchemaFor(model.ImportTypeFuncionarios)
	require.True(t, ok)
	return s
}

func row(line int, values map[string]string) model.ImportRow {
	return model.ImportRow{Line: line, Values: values}
}

func ccaRefs() *model.ReferenceSet {
	return model.NewReferenceSet([]model.ReferenceEntry{
		{Key: "ABC", Code: "ABC001", ID: "cca-1"},
		{Code: "OBRA-22", ID: "cca-2"},
	})
}

// ========================================
// NORMALIZER
// ========================================

func TestNormalizeCPF(t *testing.T) {
	n := NewNormalizer(funcionarios(t))

	for _, raw := range []string{"12345678909", "123.456.789-09", " 123 456 789 09 ", "123456789-09"} {
		got := n.Normalize(row(2, map[string]string{model.ColCPF: raw}))
		assert.Equal(t, "123.456.789-09", got.Get(model.ColCPF), raw)

		again := n.Normalize(got)
		assert.Equal(t, got.Values, again.Values, "normalization must be idempotent")
	}

	// not 11 digits: left for the validator
	got := n.Normalize(row(2, map[string]string{model.ColCPF: "1234"}))
	assert.Equal(t, "1234", got.Get(model.ColCPF))
}

func TestNormalizeTextAndDates(t *testing.T) {
	n := NewNormalizer(desvios(t))
	in := row(3, map[string]string{
		model.ColData:                "15/01/2024",
		model.ColDescricaoDesvio:     "  queda de material ",
		model.ColResponsavelInspecao: " Maria ",
		model.ColCCACodigo:           "abc",
	})

	got := n.Normalize(in)

	assert.Equal(t, "2024-01-15", got.Get(model.ColData))
	assert.Equal(t, "QUEDA DE MATERIAL", got.Get(model.ColDescricaoDesvio))
	assert.Equal(t, "Maria", got.Get(model.ColResponsavelInspecao))
	assert.Equal(t, "ABC", got.Get(model.ColCCACodigo))

	// input untouched
	assert.Equal(t, "15/01/2024", in.Get(model.ColData))
	assert.Equal(t, got.Values, n.Normalize(got).Values)
}

func TestNormalizeKeepsMalformedDates(t *testing.T) {
	n := NewNormalizer(desvios(t))
	got := n.Normalize(row(2, map[string]string{model.ColData: "2024/01/15"}))
	assert.Equal(t, "2024/01/15", got.Get(model.ColData))
}

// ========================================
// VALIDATOR
// ========================================

func TestValidateRequiredFields(t *testing.T) {
	v := NewValidator(desvios(t), ccaRefs())

	_, errs := v.Validate(row(2, map[string]string{
		model.ColData:            "2024-01-15",
		model.ColDescricaoDesvio: "",
	}))

	require.Len(t, errs, 2)
	assert.Equal(t, model.ColDescricaoDesvio+": "+MsgRequired, errs[0])
	assert.Equal(t, model.ColResponsavelInspecao+": "+MsgRequired, errs[1])
}

func TestValidateDates(t *testing.T) {
	v := NewValidator(desvios(t), ccaRefs())
	base := func(date string) model.ImportRow {
		return row(2, map[string]string{
			model.ColData:                date,
			model.ColDescricaoDesvio:     "QUEDA",
			model.ColResponsavelInspecao: "JOAO",
		})
	}

	_, errs := v.Validate(base("2024-01-15"))
	assert.Empty(t, errs)

	_, errs = v.Validate(base("2024-13-01"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], MsgDateInvalid)

	_, errs = v.Validate(base("2023-02-29"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], MsgDateInvalid)

	_, errs = v.Validate(base("15-01-2024"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], MsgDateFormat)
}

func TestValidateCPF(t *testing.T) {
	v := NewValidator(funcionarios(t), ccaRefs())

	_, errs := v.Validate(row(2, map[string]string{
		model.ColNome:   "ANA",
		model.ColCPF:    "123.456",
		model.ColFuncao: "PEDREIRO",
	}))
	require.Len(t, errs, 1)
	assert.Equal(t, model.ColCPF+": "+MsgCPFLength, errs[0])

	_, errs = v.Validate(row(2, map[string]string{
		model.ColNome:   "ANA",
		model.ColCPF:    "123.456.789-09",
		model.ColFuncao: "PEDREIRO",
	}))
	assert.Empty(t, errs)
}

func TestValidateReferenceRewritesCanonicalCode(t *testing.T) {
	refs := ccaRefs()
	v := NewValidator(desvios(t), refs)
	in := row(2, map[string]string{
		model.ColData:                "2024-01-15",
		model.ColDescricaoDesvio:     "QUEDA",
		model.ColResponsavelInspecao: "JOAO",
		model.ColCCACodigo:           "abc",
	})

	out, errs := v.Validate(in)

	assert.Empty(t, errs)
	assert.Equal(t, "ABC001", out.Get(model.ColCCACodigo))
	assert.Equal(t, "abc", in.Get(model.ColCCACodigo))
	assert.Equal(t, 2, refs.Len())
}

func TestValidateUnknownReference(t *testing.T) {
	v := NewValidator(desvios(t), ccaRefs())

	_, errs := v.Validate(row(2, map[string]string{
		model.ColData:                "2024-01-15",
		model.ColDescricaoDesvio:     "QUEDA",
		model.ColResponsavelInspecao: "JOAO",
		model.ColCCACodigo:           "ZZZ999",
	}))

	require.Len(t, errs, 1)
	assert.True(t, strings.HasPrefix(errs[0], model.ColCCACodigo+": "))
	assert.Contains(t, errs[0], "ZZZ999")
}

func TestValidateOptionalReferenceAbsent(t *testing.T) {
	v := NewValidator(desvios(t), nil)

	_, errs := v.Validate(row(2, map[string]string{
		model.ColData:                "2024-01-15",
		model.ColDescricaoDesvio:     "QUEDA",
		model.ColResponsavelInspecao: "JOAO",
	}))
	assert.Empty(t, errs)
}

// ========================================
// DUPLICATE DETECTOR / CLASSIFY
// ========================================

func TestDuplicateDetectorFirstSeenWins(t *testing.T) {
	seen := model.NewKeySet()
	d := NewDuplicateDetector(funcionarios(t), seen, nil)

	_, _, dup := d.Check(row(2, map[string]string{model.ColCPF: "123.456.789-09"}))
	assert.False(t, dup)

	key, first, dup := d.Check(row(5, map[string]string{model.ColCPF: "123.456.789-09"}))
	assert.True(t, dup)
	assert.Equal(t, 2, first)
	assert.Equal(t, "123.456.789-09", key)

	// rows without a key are never duplicates
	_, _, dup = d.Check(row(6, map[string]string{}))
	assert.False(t, dup)
	_, _, dup = d.Check(row(7, map[string]string{}))
	assert.False(t, dup)

	assert.True(t, seen.Has("123.456.789-09"))
	assert.Len(t, seen, 1)
}

func TestClassifyWithPreseededKeys(t *testing.T) {
	schema := funcionarios(t)
	seen := model.NewKeySet("123.456.789-09")
	rows := []model.ImportRow{
		row(2, map[string]string{model.ColNome: "ana", model.ColCPF: "12345678909", model.ColFuncao: "pedreiro"}),
		row(3, map[string]string{model.ColNome: "bia", model.ColCPF: "222.222.222-22", model.ColFuncao: "servente"}),
	}

	c := Classify(schema, rows, ccaRefs(), seen, model.NewKeySet())

	require.Len(t, c.Duplicates, 1)
	assert.Equal(t, 2, c.Duplicates[0].Row.Line)
	assert.Equal(t, 0, c.Duplicates[0].DuplicateOf)
	require.Len(t, c.Valid, 1)
	assert.True(t, seen.Has("222.222.222-22"))
}

func TestClassifyBuckets(t *testing.T) {
	schema := funcionarios(t)
	existing := model.NewKeySet("111.111.111-11")

	rows := []model.ImportRow{
		row(2, map[string]string{model.ColNome: "ana", model.ColCPF: "22222222222", model.ColFuncao: "pedreiro", model.ColCCACodigo: "abc"}),
		row(3, map[string]string{model.ColNome: "bia", model.ColCPF: "222.222.222-22", model.ColFuncao: "servente", model.ColCCACodigo: "NOPE"}),
		row(4, map[string]string{model.ColNome: "", model.ColCPF: "", model.ColFuncao: ""}),
		row(5, map[string]string{model.ColNome: "caio", model.ColCPF: "11111111111", model.ColFuncao: "mestre"}),
		row(6, map[string]string{model.ColNome: "davi", model.ColCPF: "333", model.ColFuncao: "eletricista"}),
	}

	c := Classify(schema, rows, ccaRefs(), model.NewKeySet(), existing)

	require.Len(t, c.Valid, 1)
	assert.Equal(t, 2, c.Valid[0].Row.Line)
	assert.Equal(t, "ABC001", c.Valid[0].Row.Get(model.ColCCACodigo))
	assert.Equal(t, "ANA", c.Valid[0].Row.Get(model.ColNome))

	// the duplicate is not validated against the reference set
	require.Len(t, c.Duplicates, 1)
	assert.Equal(t, 3, c.Duplicates[0].Row.Line)
	assert.Equal(t, 2, c.Duplicates[0].DuplicateOf)
	assert.Empty(t, c.Duplicates[0].Errors)

	require.Len(t, c.Updates, 1)
	assert.Equal(t, 5, c.Updates[0].Row.Line)
	assert.Equal(t, "111.111.111-11", c.Updates[0].Key)

	require.Len(t, c.Invalid, 1)
	assert.Equal(t, 6, c.Invalid[0].Row.Line)
	assert.NotEmpty(t, c.Invalid[0].Errors)

	assert.Equal(t, 1, c.Skipped)
	assert.Equal(t, 4, c.Total())
}

func TestClassifyNeverAcceptsRowsWithErrors(t *testing.T) {
	schema := desvios(t)
	rows := []model.ImportRow{
		row(2, map[string]string{model.ColData: "2024-01-15", model.ColDescricaoDesvio: "A"}),
		row(3, map[string]string{model.ColData: "2024-13-01", model.ColDescricaoDesvio: "B", model.ColResponsavelInspecao: "X"}),
		row(4, map[string]string{model.ColDescricaoDesvio: "C", model.ColResponsavelInspecao: "X"}),
	}

	c := Classify(schema, rows, ccaRefs(), model.NewKeySet(), model.NewKeySet("2024-13-01_B"))

	assert.Empty(t, c.Valid)
	assert.Empty(t, c.Updates)
	assert.Len(t, c.Invalid, 3)
}

// ========================================
// WRITER / AUDIT
// ========================================

func TestReconciliationWriterContinuesAfterFailure(t *testing.T) {
	schema := funcionarios(t)
	refs := ccaRefs()
	fw := &fakeRecordWriter{failLine: map[int]error{3: errors.New("duplicate key value")}}

	valid := []model.ValidatedRow{
		{Row: row(2, map[string]string{model.ColCPF: "222.222.222-22", model.ColCCACodigo: "ABC001"}), Bucket: model.BucketValid},
		{Row: row(3, map[string]string{model.ColCPF: "333.333.333-33"}), Bucket: model.BucketValid},
		{Row: row(4, map[string]string{model.ColCPF: "444.444.444-44", model.ColCCACodigo: "OBRA-22"}), Bucket: model.BucketValid},
	}
	updates := []model.ValidatedRow{
		{Row: row(5, map[string]string{model.ColCPF: "111.111.111-11"}), Key: "111.111.111-11", Bucket: model.BucketUpdate},
	}

	out := NewReconciliationWriter(schema, fw, refs).Write(context.Background(), valid, updates)

	assert.Equal(t, 2, out.Created)
	assert.Equal(t, 1, out.Updated)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "Linha 3: duplicate key value", out.Errors[0])

	require.Len(t, fw.calls, 4)
	require.NotNil(t, fw.calls[0].refID)
	assert.Equal(t, "cca-1", *fw.calls[0].refID)
	assert.Nil(t, fw.calls[1].refID, "absent code is an unlinked row")
	assert.Equal(t, "cca-2", *fw.calls[2].refID)
	assert.Equal(t, "update", fw.calls[3].op)
	assert.Equal(t, "111.111.111-11", fw.calls[3].key)
}

func TestBuildResultBounds(t *testing.T) {
	c := model.Classification{
		Valid:      []model.ValidatedRow{{Row: row(2, nil)}, {Row: row(3, nil)}},
		Invalid:    []model.ValidatedRow{{Row: row(4, nil), Errors: []string{"nome: campo obrigatório", "cpf: campo obrigatório"}}},
		Duplicates: []model.ValidatedRow{{Row: row(5, nil)}},
	}
	out := WriteOutcome{Created: 1, Errors: []string{"Linha 3: boom"}}

	result := BuildResult(c, out)

	assert.Equal(t, 4, result.TotalRows)
	assert.Equal(t, []string{"Linha 4: nome: campo obrigatório; cpf: campo obrigatório", "Linha 3: boom"}, result.Errors)
	assert.LessOrEqual(t, result.Created+result.Updated+len(result.Errors), result.TotalRows)
	assert.Equal(t, model.StatusParcial, result.Status)
}

func TestAuditLoggerSwallowsFailure(t *testing.T) {
	run := model.NewImportRun(model.ImportTypeDesvios, "user-1", "desvios.xlsx")
	result := model.ImportResult{TotalRows: 1, Created: 1, Status: model.StatusSucesso}

	entry := NewAuditLogger(&fakeLogRepo{err: errors.New("connection refused")}).Record(context.Background(), run, result)
	assert.Nil(t, entry)

	repo := &fakeLogRepo{}
	entry = NewAuditLogger(repo).Record(context.Background(), run, result)
	require.NotNil(t, entry)
	require.Len(t, repo.entries, 1)
	assert.Equal(t, model.StatusSucesso, repo.entries[0].Status)
}

// ========================================
// END TO END
// ========================================

func TestImportEndToEnd(t *testing.T) {
	schema := desvios(t)
	refs := ccaRefs()
	rows := []model.ImportRow{
		row(2, map[string]string{model.ColData: "15/01/2024", model.ColDescricaoDesvio: "queda", model.ColResponsavelInspecao: "Joao", model.ColCCACodigo: "abc"}),
		row(3, map[string]string{model.ColData: "2024-01-15", model.ColDescricaoDesvio: "QUEDA", model.ColResponsavelInspecao: "Pedro"}),
		row(4, map[string]string{model.ColData: "2024-02-01", model.ColDescricaoDesvio: "CHOQUE"}),
	}

	c := Classify(schema, rows, refs, model.NewKeySet(), model.NewKeySet())
	assert.Len(t, c.Valid, 1)
	assert.Len(t, c.Duplicates, 1)
	assert.Len(t, c.Invalid, 1)

	fw := &fakeRecordWriter{}
	out := NewReconciliationWriter(schema, fw, refs).Write(context.Background(), c.Valid, c.Updates)
	require.Len(t, fw.calls, 1)
	assert.Equal(t, 2, fw.calls[0].line)

	result := BuildResult(c, out)
	run := model.NewImportRun(model.ImportTypeDesvios, "user-1", "desvios.xlsx")
	repo := &fakeLogRepo{}
	NewAuditLogger(repo).Record(context.Background(), run, result)

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.Equal(t, 3, entry.TotalRegistros)
	assert.Equal(t, 1, entry.RegistrosCriados)
	assert.Equal(t, 1, entry.RegistrosComErro)
	assert.Equal(t, model.StatusParcial, entry.Status)
}
