// Package alocacao partitions a nota fiscal's line items across N cargas.
// The algorithm is deterministic and balance-seeking: it never optimizes
// the carga count, only the spread of value/weight across a given count.
package alocacao

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	notadomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/notafiscal/domain"
)

const (
	MinCargas = 1
	MaxCargas = 20
)

var ErrNumeroCargasInvalido = errors.New("numero_cargas_invalido")

// Fragmento is the slice of one invoiced line assigned to one carga.
type Fragmento struct {
	ItemNotaID    snowflake.ID
	CodigoProduto string
	Quantidade    float64
	Valor         float64
	Peso          float64
	Volume        float64
}

// CargaPlanejada is one planned carga before persistence.
type CargaPlanejada struct {
	Sequencia   int
	ValorTotal  float64
	PesoTotal   float64
	VolumeTotal float64
	Fragmentos  []Fragmento
}

// Alocar splits the nota's items across numeroCargas cargas.
//
// Items are assigned largest value first; each item's quantity is spread
// proportionally to the inverse of the cargas' running value totals, so
// the emptiest carga always absorbs the next share. Non-fractionable items
// move in whole-unit lots with the remainder going to the emptiest carga.
// Per item, fragment quantities sum exactly to the item quantity and
// fragment values sum exactly to the item total (the last fragment absorbs
// rounding residue).
func Alocar(nota *notadomain.NotaFiscal, numeroCargas int) ([]CargaPlanejada, error) {
	if numeroCargas < MinCargas || numeroCargas > MaxCargas {
		return nil, ErrNumeroCargasInvalido
	}
	if nota == nil || len(nota.Itens) == 0 {
		return nil, notadomain.ErrNotaSemItens
	}

	itens := make([]notadomain.ItemNota, len(nota.Itens))
	copy(itens, nota.Itens)
	sort.SliceStable(itens, func(i, j int) bool {
		if itens[i].ValorTotal != itens[j].ValorTotal {
			return itens[i].ValorTotal > itens[j].ValorTotal
		}
		return strings.Compare(itens[i].CodigoProduto, itens[j].CodigoProduto) < 0
	})

	cargas := make([]CargaPlanejada, numeroCargas)
	for i := range cargas {
		cargas[i].Sequencia = i + 1
	}
	acumulado := make([]float64, numeroCargas)

	for _, item := range itens {
		quantidades := repartirQuantidade(item, acumulado)
		aplicarFragmentos(cargas, acumulado, item, quantidades)
	}

	return cargas, nil
}

// repartirQuantidade decides how much of the item each carga receives.
func repartirQuantidade(item notadomain.ItemNota, acumulado []float64) []float64 {
	n := len(acumulado)
	quantidades := make([]float64, n)
	if n == 1 {
		quantidades[0] = item.Quantidade
		return quantidades
	}

	pesos := make([]float64, n)
	var somaPesos float64
	for i, acc := range acumulado {
		pesos[i] = 1 / (1 + acc)
		somaPesos += pesos[i]
	}

	if item.Fracionavel {
		restante := item.Quantidade
		for i := 0; i < n-1; i++ {
			quantidades[i] = item.Quantidade * pesos[i] / somaPesos
			restante -= quantidades[i]
		}
		quantidades[n-1] = restante
		return quantidades
	}

	// Whole-unit lots first, then leftover units one by one to the
	// emptiest carga so nothing is lost or duplicated.
	alocado := 0.0
	for i := 0; i < n; i++ {
		quantidades[i] = math.Floor(item.Quantidade * pesos[i] / somaPesos)
		alocado += quantidades[i]
	}

	restante := int(item.Quantidade - alocado)
	projecao := make([]float64, n)
	for i := range projecao {
		projecao[i] = acumulado[i] + quantidades[i]*item.ValorUnitario
	}
	for unidade := 0; unidade < restante; unidade++ {
		menor := 0
		for i := 1; i < n; i++ {
			if projecao[i] < projecao[menor] {
				menor = i
			}
		}
		quantidades[menor]++
		projecao[menor] += item.ValorUnitario
	}
	return quantidades
}

// aplicarFragmentos materializes the chosen quantities into fragments and
// updates the running totals. The last non-empty fragment absorbs the
// rounding residue so each item's value, weight and volume reconcile
// exactly.
func aplicarFragmentos(cargas []CargaPlanejada, acumulado []float64, item notadomain.ItemNota, quantidades []float64) {
	ultimo := -1
	for i, quantidade := range quantidades {
		if quantidade > 0 {
			ultimo = i
		}
	}
	if ultimo < 0 {
		return
	}

	pesoPorUnidade := 0.0
	volumePorUnidade := 0.0
	if item.Quantidade > 0 {
		pesoPorUnidade = item.Peso / item.Quantidade
		volumePorUnidade = item.Volume / item.Quantidade
	}

	var valorAlocado, pesoAlocado, volumeAlocado float64
	for i, quantidade := range quantidades {
		if quantidade <= 0 {
			continue
		}

		fragmento := Fragmento{
			ItemNotaID:    item.ID,
			CodigoProduto: item.CodigoProduto,
			Quantidade:    quantidade,
		}
		if i == ultimo {
			fragmento.Valor = round2(item.ValorTotal - valorAlocado)
			fragmento.Peso = item.Peso - pesoAlocado
			fragmento.Volume = item.Volume - volumeAlocado
		} else {
			fragmento.Valor = round2(quantidade * item.ValorUnitario)
			fragmento.Peso = quantidade * pesoPorUnidade
			fragmento.Volume = quantidade * volumePorUnidade
			valorAlocado += fragmento.Valor
			pesoAlocado += fragmento.Peso
			volumeAlocado += fragmento.Volume
		}

		cargas[i].Fragmentos = append(cargas[i].Fragmentos, fragmento)
		cargas[i].ValorTotal = round2(cargas[i].ValorTotal + fragmento.Valor)
		cargas[i].PesoTotal += fragmento.Peso
		cargas[i].VolumeTotal += fragmento.Volume
		acumulado[i] += fragmento.Valor
	}
}

// Distribuicao returns each carga's share of the total value, in [0,1].
func Distribuicao(cargas []CargaPlanejada) []float64 {
	var total float64
	for _, carga := range cargas {
		total += carga.ValorTotal
	}
	shares := make([]float64, len(cargas))
	if total == 0 {
		return shares
	}
	for i, carga := range cargas {
		shares[i] = carga.ValorTotal / total
	}
	return shares
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
