package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice-backend/internal/domains/funcionario/model"
	importModel "backoffice-backend/internal/domains/importacao/model"
)

type fakeRepo struct {
	created []*model.Funcionario
	updated map[string]*model.Funcionario
	cpfs    []string
}

func (f *fakeRepo) Create(_ context.Context, fn *model.Funcionario) error {
	f.created = append(f.created, fn)
	return nil
}

func (f *fakeRepo) UpdateByCPF(_ context.Context, cpf string, fn *model.Funcionario) error {
	if _, ok := f.updated[cpf]; !ok {
		return model.ErrFuncionarioNotFound
	}
	f.updated[cpf] = fn
	return nil
}

func (f *fakeRepo) ListCPFs(context.Context) ([]string, error) {
	return f.cpfs, nil
}

func TestImportWriterCreate(t *testing.T) {
	repo := &fakeRepo{}
	w := NewImportWriter(repo)
	ccaID := uuid.New().String()

	err := w.Create(context.Background(), importModel.ImportRow{Line: 2, Values: map[string]string{
		importModel.ColNome:         "ANA SOUZA",
		importModel.ColCPF:          "123.456.789-09",
		importModel.ColFuncao:       "PEDREIRO",
		importModel.ColMatricula:    "M-10",
		importModel.ColDataAdmissao: "2023-05-02",
	}}, &ccaID)
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	f := repo.created[0]
	assert.Equal(t, "123.456.789-09", f.CPF)
	require.NotNil(t, f.Matricula)
	assert.Equal(t, "M-10", *f.Matricula)
	require.NotNil(t, f.DataAdmissao)
	assert.Equal(t, 2023, f.DataAdmissao.Year())
	require.NotNil(t, f.CCAID)
	assert.Equal(t, ccaID, f.CCAID.String())
	assert.True(t, f.Ativo)
}

func TestImportWriterUnlinkedAndUpdate(t *testing.T) {
	repo := &fakeRepo{updated: map[string]*model.Funcionario{"111.111.111-11": nil}}
	w := NewImportWriter(repo)
	row := importModel.ImportRow{Line: 3, Values: map[string]string{
		importModel.ColNome:   "BIA",
		importModel.ColCPF:    "111.111.111-11",
		importModel.ColFuncao: "SERVENTE",
	}}

	require.NoError(t, w.Update(context.Background(), "111.111.111-11", row, nil))
	f := repo.updated["111.111.111-11"]
	require.NotNil(t, f)
	assert.Nil(t, f.CCAID)
	assert.Nil(t, f.Matricula)

	err := w.Update(context.Background(), "999.999.999-99", row, nil)
	assert.ErrorIs(t, err, model.ErrFuncionarioNotFound)
}
