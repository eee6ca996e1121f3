package alocacao

import (
	"math"

	cargadomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/carga/domain"
	notadomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/notafiscal/domain"
)

// ToleranciaPadrao is the default accepted divergence, in percent.
const ToleranciaPadrao = 0.01

// ResultadoValidacao reports how far the summed carga totals drift from
// the nota's declared total. A failed validation is a warning, never a
// rollback: the cargas already exist.
type ResultadoValidacao struct {
	Valido                 bool    `json:"valido"`
	ValorDivergencia       float64 `json:"valor_divergencia"`
	PorcentagemDivergencia float64 `json:"porcentagem_divergencia"`
}

// Validar recomputes the carga value sum and compares it against the nota
// total under the given percent tolerance.
func Validar(nota *notadomain.NotaFiscal, cargas []cargadomain.Carga, tolerancia float64) ResultadoValidacao {
	if tolerancia <= 0 {
		tolerancia = ToleranciaPadrao
	}

	var somaCargas float64
	for _, carga := range cargas {
		somaCargas += carga.ValorTotal
	}

	divergencia := math.Abs(somaCargas - nota.ValorTotal)
	var porcentagem float64
	if nota.ValorTotal != 0 {
		porcentagem = divergencia / nota.ValorTotal * 100
	} else if divergencia > 0 {
		porcentagem = 100
	}

	return ResultadoValidacao{
		Valido:                 porcentagem <= tolerancia,
		ValorDivergencia:       round2(divergencia),
		PorcentagemDivergencia: porcentagem,
	}
}
