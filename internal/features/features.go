// Package features turns a nota fiscal into the fixed numeric vector used
// by the suggestion engine. Extraction is pure: same nota, same vector.
package features

import (
	"math"

	notadomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/notafiscal/domain"
)

// Predicado marks line items that need special handling (fragile,
// hazardous, refrigerated). Injected so the category set stays
// configuration, not code.
type Predicado func(item notadomain.ItemNota) bool

// PorCategorias builds a Predicado from a list of category codes.
func PorCategorias(categorias []string) Predicado {
	set := make(map[string]struct{}, len(categorias))
	for _, categoria := range categorias {
		set[categoria] = struct{}{}
	}
	return func(item notadomain.ItemNota) bool {
		_, ok := set[item.Categoria]
		return ok
	}
}

// Vetor is the feature snapshot of a nota fiscal.
type Vetor struct {
	QuantidadeItens    float64 `json:"quantidade_itens"`
	ProdutosDistintos  float64 `json:"produtos_distintos"`
	QuantidadeTotal    float64 `json:"quantidade_total"`
	PesoTotal          float64 `json:"peso_total"`
	VolumeTotal        float64 `json:"volume_total"`
	ValorTotal         float64 `json:"valor_total"`
	ProporcaoEspeciais float64 `json:"proporcao_especiais"`
	QuantidadeMedia    float64 `json:"quantidade_media"`
	QuantidadeDesvio   float64 `json:"quantidade_desvio"`
	ValorMedioPorItem  float64 `json:"valor_medio_por_item"`
}

// Coordenadas returns the vector in the compressed space used for
// similarity. Heavy-tailed magnitudes (totals, counts) go through log1p so
// no single axis dominates the distance.
func (v Vetor) Coordenadas() []float64 {
	return []float64{
		math.Log1p(v.QuantidadeItens),
		math.Log1p(v.ProdutosDistintos),
		math.Log1p(v.QuantidadeTotal),
		math.Log1p(v.PesoTotal),
		math.Log1p(v.VolumeTotal),
		math.Log1p(v.ValorTotal),
		v.ProporcaoEspeciais,
		math.Log1p(v.QuantidadeMedia),
		math.Log1p(v.QuantidadeDesvio),
		math.Log1p(v.ValorMedioPorItem),
	}
}

// Extrair computes the feature vector for a nota. Fails when the nota has
// no items, since every statistic below is undefined on an empty list.
func Extrair(nota *notadomain.NotaFiscal, especial Predicado) (Vetor, error) {
	if nota == nil || len(nota.Itens) == 0 {
		return Vetor{}, notadomain.ErrNotaSemItens
	}
	if especial == nil {
		especial = func(notadomain.ItemNota) bool { return false }
	}

	var (
		quantidadeTotal float64
		pesoTotal       float64
		volumeTotal     float64
		valorTotal      float64
		especiais       int
	)
	produtos := make(map[string]struct{}, len(nota.Itens))

	for _, item := range nota.Itens {
		quantidadeTotal += item.Quantidade
		pesoTotal += item.Peso
		volumeTotal += item.Volume
		valorTotal += item.ValorTotal
		produtos[item.CodigoProduto] = struct{}{}
		if especial(item) {
			especiais++
		}
	}

	n := float64(len(nota.Itens))
	media := quantidadeTotal / n

	var variancia float64
	for _, item := range nota.Itens {
		delta := item.Quantidade - media
		variancia += delta * delta
	}
	variancia /= n

	return Vetor{
		QuantidadeItens:    n,
		ProdutosDistintos:  float64(len(produtos)),
		QuantidadeTotal:    quantidadeTotal,
		PesoTotal:          pesoTotal,
		VolumeTotal:        volumeTotal,
		ValorTotal:         valorTotal,
		ProporcaoEspeciais: float64(especiais) / n,
		QuantidadeMedia:    media,
		QuantidadeDesvio:   math.Sqrt(variancia),
		ValorMedioPorItem:  valorTotal / n,
	}, nil
}

// Distancia is the Euclidean distance between two vectors in the
// compressed coordinate space.
func Distancia(a, b Vetor) float64 {
	ca, cb := a.Coordenadas(), b.Coordenadas()
	var sum float64
	for i := range ca {
		delta := ca[i] - cb[i]
		sum += delta * delta
	}
	return math.Sqrt(sum)
}
