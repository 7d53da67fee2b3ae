package model

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// Nivel is the risk level shown to the user
type Nivel string

const (
	NivelBaixo    Nivel = "baixo"
	NivelModerado Nivel = "moderado"
	NivelAlto     Nivel = "alto"
	NivelCritico  Nivel = "critico"
)

var ErrInvalidFactors = errors.New("invalid risk factors")

// ============================================
// ADDITIVE RULE (three factors, 1..4)
// ============================================

// Aditiva factor weights; they sum to 1 so the score stays in 1..4
var (
	PesoExposicao     = decimal.RequireFromString("0.25")
	PesoProbabilidade = decimal.RequireFromString("0.35")
	PesoSeveridade    = decimal.RequireFromString("0.40")
)

// Upper bounds (inclusive) of the additive score per level
var (
	limiteAditivaBaixo    = decimal.RequireFromString("1.75")
	limiteAditivaModerado = decimal.RequireFromString("2.50")
	limiteAditivaAlto     = decimal.RequireFromString("3.25")
)

type AditivaRequest struct {
	Exposicao     int `json:"exposicao"`
	Probabilidade int `json:"probabilidade"`
	Severidade    int `json:"severidade"`
}

func (r AditivaRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Exposicao, validation.Required, validation.Min(1), validation.Max(4)),
		validation.Field(&r.Probabilidade, validation.Required, validation.Min(1), validation.Max(4)),
		validation.Field(&r.Severidade, validation.Required, validation.Min(1), validation.Max(4)),
	)
}

// ============================================
// MULTIPLICATIVE RULE (two factors, 1..5)
// ============================================

// Upper bounds (inclusive) of the probability x severity product per level
const (
	limiteMultBaixo    = 4
	limiteMultModerado = 9
	limiteMultAlto     = 16
)

type MultiplicativaRequest struct {
	Probabilidade int `json:"probabilidade"`
	Severidade    int `json:"severidade"`
}

func (r MultiplicativaRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Probabilidade, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&r.Severidade, validation.Required, validation.Min(1), validation.Max(5)),
	)
}

// Classificacao is the outcome of either rule
type Classificacao struct {
	Regra     string          `json:"regra"`
	Pontuacao decimal.Decimal `json:"pontuacao"`
	Nivel     Nivel           `json:"nivel"`
}

const (
	RegraAditiva        = "aditiva"
	RegraMultiplicativa = "multiplicativa"
)

// ClassificacaoAditiva is the weighted sum of exposure, probability and severity
func ClassificacaoAditiva(r AditivaRequest) (Classificacao, error) {
	if err := r.Validate(); err != nil {
		return Classificacao{}, errors.Join(ErrInvalidFactors, err)
	}

	score := PesoExposicao.Mul(decimal.NewFromInt(int64(r.Exposicao))).
		Add(PesoProbabilidade.Mul(decimal.NewFromInt(int64(r.Probabilidade)))).
		Add(PesoSeveridade.Mul(decimal.NewFromInt(int64(r.Severidade))))

	var nivel Nivel
	switch {
	case score.LessThanOrEqual(limiteAditivaBaixo):
		nivel = NivelBaixo
	case score.LessThanOrEqual(limiteAditivaModerado):
		nivel = NivelModerado
	case score.LessThanOrEqual(limiteAditivaAlto):
		nivel = NivelAlto
	default:
		nivel = NivelCritico
	}

	return Classificacao{Regra: RegraAditiva, Pontuacao: score, Nivel: nivel}, nil
}

// ClassificacaoMultiplicativa is probability x severity on the 5x5 matrix
func ClassificacaoMultiplicativa(r MultiplicativaRequest) (Classificacao, error) {
	if err := r.Validate(); err != nil {
		return Classificacao{}, errors.Join(ErrInvalidFactors, err)
	}

	product := r.Probabilidade * r.Severidade

	var nivel Nivel
	switch {
	case product <= limiteMultBaixo:
		nivel = NivelBaixo
	case product <= limiteMultModerado:
		nivel = NivelModerado
	case product <= limiteMultAlto:
		nivel = NivelAlto
	default:
		nivel = NivelCritico
	}

	return Classificacao{Regra: RegraMultiplicativa, Pontuacao: decimal.NewFromInt(int64(product)), Nivel: nivel}, nil
}
