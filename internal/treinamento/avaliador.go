package treinamento

import (
	"context"

	auditdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/audit/domain"
	sugdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao/domain"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao/engine"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Avaliador runs the scheduled maintenance pass: rebuild the in-memory
// corpus from storage and re-score the active model against it.
type Avaliador struct {
	db        *gorm.DB
	log       *zap.Logger
	historico *engine.Historico
	registry  *engine.Registry
	audit     auditdomain.Service
}

type AvaliadorParams struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Historico *engine.Historico
	Registry  *engine.Registry
	Audit     auditdomain.Service
}

func NewAvaliador(p AvaliadorParams) *Avaliador {
	return &Avaliador{
		db:        p.DB,
		log:       p.Log.Named("treinamento.avaliador"),
		historico: p.Historico,
		registry:  p.Registry,
		audit:     p.Audit,
	}
}

func (a *Avaliador) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultEvalTimeout)
	defer cancel()

	if err := a.RunOnce(ctx); err != nil {
		a.log.Warn("evaluation pass failed", zap.Error(err))
	}
}

func (a *Avaliador) RunOnce(ctx context.Context) error {
	if err := a.historico.Carregar(ctx); err != nil {
		return err
	}

	// Everything loaded is now part of the evaluated corpus.
	marcados := a.db.WithContext(ctx).
		Model(&sugdomain.ExemploTreinamento{}).
		Where("consumido_treino = ?", false).
		Update("consumido_treino", true)
	if marcados.Error != nil {
		return marcados.Error
	}

	tamanho := a.historico.Tamanho()
	if err := a.audit.Registrar(ctx, auditdomain.AcaoCorpusAtualizado, "corpus", 0, map[string]any{
		"exemplos": tamanho,
		"novos":    marcados.RowsAffected,
	}); err != nil {
		a.log.Warn("failed to audit corpus rebuild", zap.Error(err))
	}

	ativo := a.registry.Ativa()
	if ativo == nil || tamanho == 0 {
		return nil
	}

	avaliacao := a.avaliar(ativo)
	if err := a.db.WithContext(ctx).
		Model(&sugdomain.ModeloDescritor{}).
		Where("id = ?", ativo.Descritor.ID).
		Updates(map[string]any{
			"acuracia": avaliacao.acuracia,
			"precisao": avaliacao.precisao,
			"recall":   avaliacao.recall,
			"f1":       avaliacao.f1,
		}).Error; err != nil {
		return err
	}

	a.log.Info("active model evaluated",
		zap.String("modelo_id", ativo.Descritor.ID.String()),
		zap.Float64("acuracia", avaliacao.acuracia),
		zap.Float64("f1", avaliacao.f1),
	)
	return nil
}

type avaliacao struct {
	acuracia float64
	precisao float64
	recall   float64
	f1       float64
}

// avaliar scores the model against the whole corpus as a multiclass
// problem over carga counts, macro-averaging precision and recall.
func (a *Avaliador) avaliar(ativo *engine.ModeloAtivo) avaliacao {
	exemplos := a.historico.Snapshot()

	type contagem struct{ tp, fp, fn int }
	classes := make(map[int]*contagem)
	acertos := 0

	for _, exemplo := range exemplos {
		previsto, _, err := ativo.Inferencia.Prever(exemplo.Vetor)
		if err != nil {
			continue
		}
		if classes[exemplo.NumeroCargas] == nil {
			classes[exemplo.NumeroCargas] = &contagem{}
		}
		if classes[previsto] == nil {
			classes[previsto] = &contagem{}
		}
		if previsto == exemplo.NumeroCargas {
			acertos++
			classes[previsto].tp++
		} else {
			classes[previsto].fp++
			classes[exemplo.NumeroCargas].fn++
		}
	}

	if len(exemplos) == 0 {
		return avaliacao{}
	}

	var somaPrecisao, somaRecall float64
	for _, c := range classes {
		if c.tp+c.fp > 0 {
			somaPrecisao += float64(c.tp) / float64(c.tp+c.fp)
		}
		if c.tp+c.fn > 0 {
			somaRecall += float64(c.tp) / float64(c.tp+c.fn)
		}
	}
	n := float64(len(classes))
	precisao := somaPrecisao / n
	recall := somaRecall / n

	var f1 float64
	if precisao+recall > 0 {
		f1 = 2 * precisao * recall / (precisao + recall)
	}

	return avaliacao{
		acuracia: float64(acertos) / float64(len(exemplos)),
		precisao: precisao,
		recall:   recall,
		f1:       f1,
	}
}
