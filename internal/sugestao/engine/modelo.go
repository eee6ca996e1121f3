package engine

import (
	"encoding/json"
	"math"

	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/desmembramento/alocacao"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/features"
	sugdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao/domain"
)

// Inferencia is the model-inference side of the suggestion strategy. It
// shares the similarity path's output contract: one carga count, one
// calibrated confidence.
type Inferencia interface {
	Prever(vetor features.Vetor) (numeroCargas int, confianca float64, err error)
}

const AlgoritmoLinear = "linear"

// modeloLinear scores the feature coordinates with a learned weight
// vector; the rounded score is the suggested carga count.
type modeloLinear struct {
	Pesos []float64 `json:"pesos"`
	Vies  float64   `json:"vies"`
}

// NovaInferencia builds the inference strategy described by a model
// descriptor.
func NovaInferencia(descritor sugdomain.ModeloDescritor) (Inferencia, error) {
	switch descritor.Algoritmo {
	case AlgoritmoLinear:
		var modelo modeloLinear
		if err := json.Unmarshal(descritor.Parametros, &modelo); err != nil {
			return nil, sugdomain.ErrParametrosInvalidos
		}
		if len(modelo.Pesos) == 0 {
			return nil, sugdomain.ErrParametrosInvalidos
		}
		return &modelo, nil
	default:
		return nil, sugdomain.ErrAlgoritmoInvalido
	}
}

func (m *modeloLinear) Prever(vetor features.Vetor) (int, float64, error) {
	coords := vetor.Coordenadas()
	if len(m.Pesos) != len(coords) {
		return 0, 0, sugdomain.ErrParametrosInvalidos
	}

	score := m.Vies
	for i, coord := range coords {
		score += m.Pesos[i] * coord
	}

	numeroCargas := int(math.Round(score))
	if numeroCargas < alocacao.MinCargas {
		numeroCargas = alocacao.MinCargas
	}
	if numeroCargas > alocacao.MaxCargas {
		numeroCargas = alocacao.MaxCargas
	}

	// Scores near an integer are confident predictions; exactly between
	// two counts is a coin toss.
	margem := math.Abs(score - math.Round(score))
	confianca := 1 - margem
	if confianca < 0.5 {
		confianca = 0.5
	}
	return numeroCargas, confianca, nil
}
