package engine

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"github.com/bwmarrin/snowflake"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/clock"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/config"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/desmembramento/alocacao"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/features"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/observability/metrics"
	notadomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/notafiscal/domain"
	sugdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// confiancaHeuristica is deliberately low: with no history and no model
// the engine is guessing from a single weight ratio.
const confiancaHeuristica = 0.2

type EngineParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Config    config.Config
	Clock     clock.Clock
	NotaSvc   notadomain.Service
	Historico *Historico
	Registry  *Registry
}

// Engine produces carga-count suggestions. It is polymorphic over the
// suggestion source: model inference when an active model exists,
// similarity lookup when the corpus has examples, a weight heuristic as
// the floor. Exactly one suggestion and one confidence come out per call.
type Engine struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	notaSvc   notadomain.Service
	historico *Historico
	registry  *Registry

	vizinhosK          int
	pesoMaximoPorCarga float64
	especial           features.Predicado
	metrics            *metrics.EngineMetrics
}

func NewEngine(p EngineParam) sugdomain.Service {
	return &Engine{
		db:    p.DB,
		log:   p.Log.Named("sugestao.engine"),
		genID: p.GenID,
		clock: p.Clock,

		notaSvc:   p.NotaSvc,
		historico: p.Historico,
		registry:  p.Registry,

		vizinhosK:          p.Config.Engine.VizinhosK,
		pesoMaximoPorCarga: p.Config.Engine.PesoMaximoPorCarga,
		especial:           features.PorCategorias(p.Config.Engine.CategoriasEspeciais),
		metrics: metrics.EngineWithConfig(metrics.Config{
			Environment: p.Config.Environment,
		}),
	}
}

func (e *Engine) Sugerir(ctx context.Context, notaID string) (*sugdomain.Sugestao, error) {
	nota, err := e.notaSvc.GetByID(ctx, notaID)
	if err != nil {
		return nil, err
	}

	vetor, err := features.Extrair(nota, e.especial)
	if err != nil {
		return nil, err
	}

	numeroCargas, confianca, fonte := e.escolher(vetor)

	sugestao := &sugdomain.Sugestao{
		NumeroCargasSugerido: numeroCargas,
		Confianca:            confianca,
		Fonte:                fonte,
		Features:             vetor,
	}
	if plano, planErr := alocacao.Alocar(nota, numeroCargas); planErr == nil {
		sugestao.DistribuicaoSugerida = alocacao.Distribuicao(plano)
	}

	e.registrarPredicao(ctx, nota.ID, sugestao)
	e.metrics.IncSugestaoServida(fonte, confianca)
	return sugestao, nil
}

// escolher picks the suggestion source. The active model wins when it can
// score the vector; similarity follows; the heuristic is last.
func (e *Engine) escolher(vetor features.Vetor) (int, float64, string) {
	if ativo := e.registry.Ativa(); ativo != nil {
		numeroCargas, confianca, err := ativo.Inferencia.Prever(vetor)
		if err == nil {
			return numeroCargas, confianca, sugdomain.FonteModelo
		}
		e.log.Warn("model inference failed, falling back", zap.Error(err))
	}

	if vizinhos := e.historico.Vizinhos(vetor, e.vizinhosK); len(vizinhos) > 0 {
		return porSimilaridade(vizinhos)
	}

	return e.porHeuristica(vetor), confiancaHeuristica, sugdomain.FonteHeuristica
}

// porSimilaridade votes among the nearest neighbors, each weighted by the
// inverse of its distance. Confidence shrinks as the neighborhood drifts
// away from the query.
func porSimilaridade(vizinhos []Vizinho) (int, float64, string) {
	votos := make(map[int]float64)
	var somaDistancias float64
	for _, vizinho := range vizinhos {
		votos[vizinho.Exemplo.NumeroCargas] += 1 / (1 + vizinho.Distancia)
		somaDistancias += vizinho.Distancia
	}

	vencedor, melhor := 0, -1.0
	for numeroCargas, peso := range votos {
		if peso > melhor || (peso == melhor && numeroCargas < vencedor) {
			vencedor, melhor = numeroCargas, peso
		}
	}

	media := somaDistancias / float64(len(vizinhos))
	confianca := 1 / (1 + media)
	return vencedor, confianca, sugdomain.FonteSimilaridade
}

func (e *Engine) porHeuristica(vetor features.Vetor) int {
	if e.pesoMaximoPorCarga <= 0 {
		return alocacao.MinCargas
	}
	numeroCargas := int(math.Ceil(vetor.PesoTotal / e.pesoMaximoPorCarga))
	if numeroCargas < alocacao.MinCargas {
		numeroCargas = alocacao.MinCargas
	}
	if numeroCargas > alocacao.MaxCargas {
		numeroCargas = alocacao.MaxCargas
	}
	return numeroCargas
}

// registrarPredicao appends the audit snapshot of this suggestion. Best
// effort: a storage hiccup here must not fail the suggestion itself.
func (e *Engine) registrarPredicao(ctx context.Context, notaID snowflake.ID, sugestao *sugdomain.Sugestao) {
	featuresJSON, err := json.Marshal(sugestao.Features)
	if err != nil {
		e.log.Warn("failed to marshal features", zap.Error(err))
		return
	}
	distribuicaoJSON, err := json.Marshal(sugestao.DistribuicaoSugerida)
	if err != nil {
		e.log.Warn("failed to marshal distribution", zap.Error(err))
		return
	}

	registro := sugdomain.RegistroPredicao{
		ID:                   e.genID.Generate(),
		NotaID:               notaID,
		Features:             featuresJSON,
		Fonte:                sugestao.Fonte,
		NumeroCargasSugerido: sugestao.NumeroCargasSugerido,
		Distribuicao:         distribuicaoJSON,
		Confianca:            sugestao.Confianca,
		CreatedAt:            e.clock.Now(),
	}
	if err := e.db.WithContext(ctx).Create(&registro).Error; err != nil {
		e.log.Warn("failed to persist prediction record",
			zap.String("nota_id", notaID.String()),
			zap.Error(err),
		)
	}
}

// RegistrarDecisao closes the nota's latest open prediction with the
// human outcome. Absence of an open prediction is not an error: direct
// manual splits never had a suggestion to grade.
func (e *Engine) RegistrarDecisao(ctx context.Context, notaID snowflake.ID, numeroCargasFinal int, distribuicaoFinal []float64) error {
	var registro sugdomain.RegistroPredicao
	err := e.db.WithContext(ctx).
		Where("nota_id = ? AND decidido_em IS NULL", notaID).
		Order("created_at DESC, id DESC").
		First(&registro).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	distribuicaoJSON, err := json.Marshal(distribuicaoFinal)
	if err != nil {
		return err
	}

	aceito := registro.NumeroCargasSugerido == numeroCargasFinal
	now := e.clock.Now()
	return e.db.WithContext(ctx).Model(&registro).Updates(map[string]any{
		"aceito":              aceito,
		"numero_cargas_final": numeroCargasFinal,
		"distribuicao_final":  distribuicaoJSON,
		"decidido_em":         now,
	}).Error
}
