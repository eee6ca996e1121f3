package features

import (
	"errors"
	"math"
	"testing"

	notadomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/notafiscal/domain"
)

func TestExtrairCalculaAgregados(t *testing.T) {
	nota := &notadomain.NotaFiscal{
		Itens: []notadomain.ItemNota{
			{CodigoProduto: "A", Quantidade: 2, ValorTotal: 100, Peso: 10, Volume: 1, Categoria: "FRAGIL"},
			{CodigoProduto: "B", Quantidade: 6, ValorTotal: 300, Peso: 30, Volume: 2, Categoria: "GERAL"},
			{CodigoProduto: "A", Quantidade: 4, ValorTotal: 200, Peso: 20, Volume: 1, Categoria: "FRAGIL"},
		},
	}

	vetor, err := Extrair(nota, PorCategorias([]string{"FRAGIL"}))
	if err != nil {
		t.Fatalf("extrair: %v", err)
	}

	if vetor.QuantidadeItens != 3 {
		t.Fatalf("expected 3 itens, got %v", vetor.QuantidadeItens)
	}
	if vetor.ProdutosDistintos != 2 {
		t.Fatalf("expected 2 produtos, got %v", vetor.ProdutosDistintos)
	}
	if vetor.QuantidadeTotal != 12 {
		t.Fatalf("expected quantidade 12, got %v", vetor.QuantidadeTotal)
	}
	if vetor.ValorTotal != 600 {
		t.Fatalf("expected valor 600, got %v", vetor.ValorTotal)
	}
	if math.Abs(vetor.ProporcaoEspeciais-2.0/3.0) > 1e-9 {
		t.Fatalf("expected proporcao especiais 2/3, got %v", vetor.ProporcaoEspeciais)
	}
	if vetor.QuantidadeMedia != 4 {
		t.Fatalf("expected quantidade media 4, got %v", vetor.QuantidadeMedia)
	}
}

func TestExtrairNotaVazia(t *testing.T) {
	_, err := Extrair(&notadomain.NotaFiscal{}, nil)
	if !errors.Is(err, notadomain.ErrNotaSemItens) {
		t.Fatalf("expected ErrNotaSemItens, got %v", err)
	}
	if _, err := Extrair(nil, nil); !errors.Is(err, notadomain.ErrNotaSemItens) {
		t.Fatalf("expected ErrNotaSemItens for nil nota, got %v", err)
	}
}

func TestExtrairDeterministico(t *testing.T) {
	nota := &notadomain.NotaFiscal{
		Itens: []notadomain.ItemNota{
			{CodigoProduto: "X", Quantidade: 7, ValorTotal: 420, Peso: 3.5},
			{CodigoProduto: "Y", Quantidade: 1, ValorTotal: 99.9, Peso: 0.2},
		},
	}

	primeiro, err := Extrair(nota, nil)
	if err != nil {
		t.Fatalf("extrair: %v", err)
	}
	segundo, err := Extrair(nota, nil)
	if err != nil {
		t.Fatalf("extrair: %v", err)
	}
	if primeiro != segundo {
		t.Fatalf("same nota produced different vectors: %+v vs %+v", primeiro, segundo)
	}
}

func TestDistancia(t *testing.T) {
	a := Vetor{QuantidadeItens: 3, ValorTotal: 600, PesoTotal: 60}
	b := Vetor{QuantidadeItens: 5, ValorTotal: 900, PesoTotal: 95}

	if d := Distancia(a, a); d != 0 {
		t.Fatalf("expected zero distance to self, got %v", d)
	}
	if Distancia(a, b) != Distancia(b, a) {
		t.Fatalf("distance is not symmetric")
	}
	if Distancia(a, b) <= 0 {
		t.Fatalf("expected positive distance between distinct vectors")
	}
}
