package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassificacaoAditiva(t *testing.T) {
	tests := []struct {
		name  string
		req   AditivaRequest
		score string
		nivel Nivel
	}{
		{"all minimum", AditivaRequest{1, 1, 1}, "1", NivelBaixo},
		{"mid", AditivaRequest{2, 2, 2}, "2", NivelModerado},
		{"high severity", AditivaRequest{2, 3, 4}, "3.15", NivelAlto},
		{"all maximum", AditivaRequest{4, 4, 4}, "4", NivelCritico},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClassificacaoAditiva(tt.req)
			require.NoError(t, err)
			assert.Equal(t, RegraAditiva, got.Regra)
			assert.Equal(t, tt.score, got.Pontuacao.String())
			assert.Equal(t, tt.nivel, got.Nivel)
		})
	}
}

func TestClassificacaoMultiplicativa(t *testing.T) {
	tests := []struct {
		req   MultiplicativaRequest
		nivel Nivel
	}{
		{MultiplicativaRequest{1, 4}, NivelBaixo},
		{MultiplicativaRequest{3, 3}, NivelModerado},
		{MultiplicativaRequest{4, 4}, NivelAlto},
		{MultiplicativaRequest{5, 4}, NivelCritico},
	}

	for _, tt := range tests {
		got, err := ClassificacaoMultiplicativa(tt.req)
		require.NoError(t, err)
		assert.Equal(t, tt.nivel, got.Nivel, "%+v", tt.req)
		assert.Equal(t, int64(tt.req.Probabilidade*tt.req.Severidade), got.Pontuacao.IntPart())
	}
}

func TestClassificacaoRejectsOutOfRange(t *testing.T) {
	_, err := ClassificacaoAditiva(AditivaRequest{Exposicao: 5, Probabilidade: 1, Severidade: 1})
	assert.True(t, errors.Is(err, ErrInvalidFactors))

	_, err = ClassificacaoMultiplicativa(MultiplicativaRequest{Probabilidade: 0, Severidade: 3})
	assert.True(t, errors.Is(err, ErrInvalidFactors))
}
