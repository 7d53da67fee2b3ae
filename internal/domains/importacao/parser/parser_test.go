package parser

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"backoffice-backend/internal/domains/importacao/model"
)

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Descrição Desvio":       model.ColDescricaoDesvio,
		"  Responsável Inspeção": model.ColResponsavelInspecao,
		"CCA":                    model.ColCCACodigo,
		"Data de Admissão":       model.ColDataAdmissao,
		"CPF":                    model.ColCPF,
		"Função":                 model.ColFuncao,
		"Matrícula":              model.ColMatricula,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeHeader(in), in)
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := map[string]string{
		"A1": "Data", "B1": "Descrição Desvio", "C1": "Responsável Inspeção", "D1": "CCA",
		"A2": "15/01/2024", "B2": "queda", "C2": "João", "D2": "abc",
		"A3": "2024-01-16", "B3": "choque", "C3": "Maria",
	}
	for cell, v := range cells {
		require.NoError(t, f.SetCellValue(sheet, cell, v))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := Parse("desvios.xlsx", buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "15/01/2024", rows[0].Get(model.ColData))
	assert.Equal(t, "queda", rows[0].Get(model.ColDescricaoDesvio))
	assert.Equal(t, "abc", rows[0].Get(model.ColCCACodigo))

	assert.Equal(t, 3, rows[1].Line)
	assert.Equal(t, "", rows[1].Get(model.ColCCACodigo))
	_, present := rows[1].Values[model.ColCCACodigo]
	assert.True(t, present, "short rows are padded with empty cells")
}

func TestParseXLSXDateCells(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Data", "Descrição Desvio", "Responsável Inspeção"}))
	require.NoError(t, f.SetCellValue(sheet, "A2", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, f.SetCellValue(sheet, "B2", "queda"))
	require.NoError(t, f.SetCellValue(sheet, "C2", "João"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "16/01/2024"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "choque"))
	require.NoError(t, f.SetCellValue(sheet, "C3", 42))

	// short date format 14 displays as "01-15-24"
	style, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "A2", "A2", style))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := Parse("desvios.xlsx", buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2024-01-15", rows[0].Get(model.ColData))
	assert.Equal(t, "16/01/2024", rows[1].Get(model.ColData), "text dates are left to the normalizer")
	assert.Equal(t, "42", rows[1].Get(model.ColResponsavelInspecao), "numbers outside date columns stay as displayed")
}

func TestResolveDateSerials(t *testing.T) {
	records := [][]string{
		{"Nome", "Data de Admissão"},
		{"Ana", "45306"},
		{"Bia", "abc"},
		{"Caio", "99999999"},
		{"Davi"},
	}
	raw := [][]string{
		{"", ""},
		{"", "45306"},
		{"", ""},
		{"", "99999999"},
		{""},
	}

	resolveDateSerials(records, raw, false)

	assert.Equal(t, "2024-01-15", records[1][1])
	assert.Equal(t, "abc", records[2][1])
	assert.Equal(t, "99999999", records[3][1], "out of range serials are not dates")
	assert.Equal(t, "Nome", records[0][0])
}

func TestParseCSVSemicolonWithBOM(t *testing.T) {
	data := "\xEF\xBB\xBFnome;cpf;funcao\nAna;12345678909;pedreiro\n\nBia;98765432100;servente\n"

	rows, err := Parse("pessoas.CSV", bytes.NewBufferString(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Ana", rows[0].Get(model.ColNome))
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Bia", rows[1].Get(model.ColNome))
	assert.Equal(t, 4, rows[1].Line, "blank lines keep their spreadsheet numbering")
}

func TestParseCSVLatin1(t *testing.T) {
	data := []byte("nome,cpf,fun\xe7\xe3o\nJos\xe9,12345678909,pedreiro\n")

	rows, err := Parse("pessoas.csv", bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "José", rows[0].Get(model.ColNome))
	assert.Equal(t, "pedreiro", rows[0].Get(model.ColFuncao))
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("dados.pdf", bytes.NewBufferString("x"))
	assert.True(t, errors.Is(err, model.ErrUnsupportedFile))

	_, err = Parse("dados.csv", bytes.NewBuffer(nil))
	assert.True(t, errors.Is(err, model.ErrEmptyFile))

	_, err = Parse("dados.csv", bytes.NewBufferString("nome;cpf\n"))
	assert.True(t, errors.Is(err, model.ErrEmptyFile), "header only")

	_, err = Parse("dados.xlsx", bytes.NewBufferString("not a zip"))
	assert.Equal(t, model.CodeParseFile, model.GetErrorCode(err))
}
