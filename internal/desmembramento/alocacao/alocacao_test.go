package alocacao

import (
	"errors"
	"math"
	"reflect"
	"testing"

	notadomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/notafiscal/domain"
)

func notaParaTeste() *notadomain.NotaFiscal {
	return &notadomain.NotaFiscal{
		ID:         1,
		Numero:     "NF-1001",
		ValorTotal: 1000.00,
		PesoTotal:  130.0,
		Itens: []notadomain.ItemNota{
			{ID: 11, CodigoProduto: "P-A", Quantidade: 10, Fracionavel: true, ValorUnitario: 50.00, ValorTotal: 500.00, Peso: 80.0, Volume: 2.0},
			{ID: 12, CodigoProduto: "P-B", Quantidade: 4, Fracionavel: false, ValorUnitario: 75.00, ValorTotal: 300.00, Peso: 30.0, Volume: 1.0},
			{ID: 13, CodigoProduto: "P-C", Quantidade: 20, Fracionavel: true, ValorUnitario: 10.00, ValorTotal: 200.00, Peso: 20.0, Volume: 0.5},
		},
	}
}

func TestAlocarRejeitaNumeroForaDosLimites(t *testing.T) {
	nota := notaParaTeste()
	for _, n := range []int{0, -1, 21, 100} {
		if _, err := Alocar(nota, n); !errors.Is(err, ErrNumeroCargasInvalido) {
			t.Fatalf("numeroCargas=%d: expected ErrNumeroCargasInvalido, got %v", n, err)
		}
	}
}

func TestAlocarRejeitaNotaSemItens(t *testing.T) {
	_, err := Alocar(&notadomain.NotaFiscal{Numero: "NF-0"}, 2)
	if !errors.Is(err, notadomain.ErrNotaSemItens) {
		t.Fatalf("expected ErrNotaSemItens, got %v", err)
	}
}

func TestAlocarCargaUnicaEspelhaNota(t *testing.T) {
	nota := notaParaTeste()
	cargas, err := Alocar(nota, 1)
	if err != nil {
		t.Fatalf("alocar: %v", err)
	}
	if len(cargas) != 1 {
		t.Fatalf("expected 1 carga, got %d", len(cargas))
	}
	if cargas[0].ValorTotal != nota.ValorTotal {
		t.Fatalf("expected valor %v, got %v", nota.ValorTotal, cargas[0].ValorTotal)
	}
	if len(cargas[0].Fragmentos) != len(nota.Itens) {
		t.Fatalf("expected %d fragmentos, got %d", len(nota.Itens), len(cargas[0].Fragmentos))
	}
}

func TestAlocarItemUnicoEmTresCargas(t *testing.T) {
	nota := &notadomain.NotaFiscal{
		ID:         2,
		Numero:     "NF-1002",
		ValorTotal: 1000.00,
		Itens: []notadomain.ItemNota{
			{ID: 21, CodigoProduto: "P-X", Quantidade: 100, Fracionavel: true, ValorUnitario: 10.00, ValorTotal: 1000.00},
		},
	}

	cargas, err := Alocar(nota, 3)
	if err != nil {
		t.Fatalf("alocar: %v", err)
	}
	if len(cargas) != 3 {
		t.Fatalf("expected 3 cargas, got %d", len(cargas))
	}

	var valor, quantidade float64
	for _, carga := range cargas {
		if len(carga.Fragmentos) == 0 {
			t.Fatalf("carga %d is empty", carga.Sequencia)
		}
		valor += carga.ValorTotal
		quantidade += carga.Fragmentos[0].Quantidade
	}
	if math.Abs(valor-1000.00) > 0.001 {
		t.Fatalf("valor sums to %v, expected 1000.00", valor)
	}
	if math.Abs(quantidade-100) > 1e-9 {
		t.Fatalf("quantidade sums to %v, expected 100", quantidade)
	}
}

func TestAlocarConservaValorPesoEQuantidade(t *testing.T) {
	nota := notaParaTeste()
	for n := 1; n <= 5; n++ {
		cargas, err := Alocar(nota, n)
		if err != nil {
			t.Fatalf("alocar n=%d: %v", n, err)
		}

		var valor, peso float64
		quantidades := make(map[string]float64)
		for _, carga := range cargas {
			valor += carga.ValorTotal
			peso += carga.PesoTotal
			for _, frag := range carga.Fragmentos {
				quantidades[frag.CodigoProduto] += frag.Quantidade
			}
		}

		if math.Abs(valor-nota.ValorTotal) > 0.001 {
			t.Fatalf("n=%d: valor diverged, sum=%v nota=%v", n, valor, nota.ValorTotal)
		}
		if math.Abs(peso-nota.PesoTotal) > 0.001 {
			t.Fatalf("n=%d: peso diverged, sum=%v nota=%v", n, peso, nota.PesoTotal)
		}
		for _, item := range nota.Itens {
			if math.Abs(quantidades[item.CodigoProduto]-item.Quantidade) > 1e-9 {
				t.Fatalf("n=%d produto=%s: quantidade diverged, sum=%v item=%v",
					n, item.CodigoProduto, quantidades[item.CodigoProduto], item.Quantidade)
			}
		}
	}
}

func TestAlocarNaoFracionavelEmLotesInteiros(t *testing.T) {
	nota := notaParaTeste()
	cargas, err := Alocar(nota, 3)
	if err != nil {
		t.Fatalf("alocar: %v", err)
	}

	for _, carga := range cargas {
		for _, frag := range carga.Fragmentos {
			if frag.CodigoProduto != "P-B" {
				continue
			}
			if frag.Quantidade != math.Trunc(frag.Quantidade) {
				t.Fatalf("carga %d: non-fractionable lot %v is not whole", carga.Sequencia, frag.Quantidade)
			}
		}
	}
}

func TestAlocarDeterministico(t *testing.T) {
	nota := notaParaTeste()
	primeira, err := Alocar(nota, 4)
	if err != nil {
		t.Fatalf("alocar: %v", err)
	}
	segunda, err := Alocar(nota, 4)
	if err != nil {
		t.Fatalf("alocar: %v", err)
	}
	if !reflect.DeepEqual(primeira, segunda) {
		t.Fatalf("same input produced different plans")
	}
}

func TestDistribuicaoSomaUm(t *testing.T) {
	nota := notaParaTeste()
	cargas, err := Alocar(nota, 3)
	if err != nil {
		t.Fatalf("alocar: %v", err)
	}

	shares := Distribuicao(cargas)
	var soma float64
	for _, share := range shares {
		if share < 0 || share > 1 {
			t.Fatalf("share out of range: %v", share)
		}
		soma += share
	}
	if math.Abs(soma-1.0) > 1e-9 {
		t.Fatalf("shares sum to %v, expected 1", soma)
	}
}
