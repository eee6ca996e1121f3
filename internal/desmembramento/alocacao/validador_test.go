package alocacao

import (
	"testing"

	cargadomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/carga/domain"
	notadomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/notafiscal/domain"
)

func TestValidarDentroDaTolerancia(t *testing.T) {
	nota := &notadomain.NotaFiscal{ValorTotal: 1000.00}
	cargas := []cargadomain.Carga{
		{ValorTotal: 600.00},
		{ValorTotal: 399.95},
	}

	resultado := Validar(nota, cargas, 0.01)
	if !resultado.Valido {
		t.Fatalf("expected valid, got divergence %v%%", resultado.PorcentagemDivergencia)
	}
	if resultado.ValorDivergencia != 0.05 {
		t.Fatalf("expected divergence 0.05, got %v", resultado.ValorDivergencia)
	}
}

func TestValidarForaDaTolerancia(t *testing.T) {
	nota := &notadomain.NotaFiscal{ValorTotal: 1000.00}
	cargas := []cargadomain.Carga{
		{ValorTotal: 600.00},
		{ValorTotal: 398.00},
	}

	resultado := Validar(nota, cargas, 0.01)
	if resultado.Valido {
		t.Fatalf("expected invalid, divergence %v%%", resultado.PorcentagemDivergencia)
	}
	if resultado.ValorDivergencia != 2.00 {
		t.Fatalf("expected divergence 2.00, got %v", resultado.ValorDivergencia)
	}
}

func TestValidarToleranciaPadrao(t *testing.T) {
	nota := &notadomain.NotaFiscal{ValorTotal: 500.00}
	cargas := []cargadomain.Carga{{ValorTotal: 500.00}}

	resultado := Validar(nota, cargas, 0)
	if !resultado.Valido || resultado.ValorDivergencia != 0 {
		t.Fatalf("expected exact match to validate, got %+v", resultado)
	}
}

func TestValidarNotaSemValor(t *testing.T) {
	nota := &notadomain.NotaFiscal{ValorTotal: 0}
	cargas := []cargadomain.Carga{{ValorTotal: 10.00}}

	resultado := Validar(nota, cargas, 0.01)
	if resultado.Valido {
		t.Fatalf("expected invalid when nota total is zero but cargas carry value")
	}
}
