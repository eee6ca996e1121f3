// Package treinamento turns decided predictions into training examples
// and keeps the suggestion corpus fresh. Everything here runs off the
// request path; a failure never reaches a caller of the split API.
package treinamento

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/features"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/observability/metrics"
	sugdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao/domain"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao/engine"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Historico *engine.Historico
	Config    Config `optional:"true"`
}

type Worker struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	historico *engine.Historico
	cfg       Config
	metrics   *metrics.EngineMetrics
}

func NewWorker(p Params) *Worker {
	cfg := p.Config.withDefaults()
	return &Worker{
		db:        p.DB,
		log:       p.Log.Named("treinamento.worker"),
		genID:     p.GenID,
		historico: p.Historico,
		cfg:       cfg,
		metrics:   metrics.Engine(),
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(); err != nil {
			w.log.Warn("training batch failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) RunOnce() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := w.processBatch(ctx, w.cfg.BatchSize)
	if err == nil {
		w.reportBacklog(ctx)
	}
	return err
}

// processBatch locks a batch of decided, unconverted prediction records,
// converts each into a training example and marks it consumed. The new
// examples join the in-memory corpus only after the transaction commits.
func (w *Worker) processBatch(ctx context.Context, limit int) (int, error) {
	if w.db == nil || w.historico == nil {
		return 0, errors.New("training_worker_unavailable")
	}
	if limit <= 0 {
		limit = w.cfg.BatchSize
	}

	processed := 0
	var novos []engine.Exemplo
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := w.lockPendentes(ctx, tx, limit)
		if err != nil {
			return err
		}

		for _, row := range rows {
			exemplo, ok := w.converter(ctx, tx, row)
			if err := tx.Model(&sugdomain.RegistroPredicao{}).
				Where("id = ?", row.ID).
				Update("convertido", true).Error; err != nil {
				return err
			}
			if !ok {
				w.metrics.IncExemploConvertido("skipped")
				continue
			}
			novos = append(novos, exemplo)
			processed++
			w.metrics.IncExemploConvertido("success")
		}
		return nil
	})
	if err != nil {
		w.metrics.IncExemploConvertido("failed")
		return processed, err
	}

	w.historico.Append(novos...)
	return processed, nil
}

func (w *Worker) lockPendentes(ctx context.Context, tx *gorm.DB, limit int) ([]sugdomain.RegistroPredicao, error) {
	query := tx.WithContext(ctx).
		Where("decidido_em IS NOT NULL AND convertido = ?", false).
		Order("created_at ASC, id ASC").
		Limit(limit)
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
	}

	var rows []sugdomain.RegistroPredicao
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// converter persists the training example for one decided prediction.
// Records without a usable outcome are skipped, not retried forever.
func (w *Worker) converter(ctx context.Context, tx *gorm.DB, row sugdomain.RegistroPredicao) (engine.Exemplo, bool) {
	if row.NumeroCargasFinal == nil || *row.NumeroCargasFinal < 1 {
		w.log.Warn("prediction record without final count",
			zap.String("registro_id", row.ID.String()),
		)
		return engine.Exemplo{}, false
	}

	var vetor features.Vetor
	if err := json.Unmarshal(row.Features, &vetor); err != nil {
		w.log.Warn("prediction record with malformed features",
			zap.String("registro_id", row.ID.String()),
			zap.Error(err),
		)
		return engine.Exemplo{}, false
	}

	distribuicao := row.DistribuicaoFinal
	if len(distribuicao) == 0 {
		distribuicao = row.Distribuicao
	}
	var shares []float64
	if len(distribuicao) > 0 {
		_ = json.Unmarshal(distribuicao, &shares)
	}

	exemplo := sugdomain.ExemploTreinamento{
		ID:           w.genID.Generate(),
		NotaID:       row.NotaID,
		Features:     row.Features,
		NumeroCargas: *row.NumeroCargasFinal,
		Distribuicao: distribuicao,
		Fonte:        row.Fonte,
		Confianca:    row.Confianca,
	}
	if err := tx.WithContext(ctx).Create(&exemplo).Error; err != nil {
		w.log.Warn("failed to persist training example",
			zap.String("registro_id", row.ID.String()),
			zap.Error(err),
		)
		return engine.Exemplo{}, false
	}

	return engine.Exemplo{
		Vetor:        vetor,
		NumeroCargas: *row.NumeroCargasFinal,
		Distribuicao: shares,
	}, true
}

func (w *Worker) reportBacklog(ctx context.Context) {
	var backlog int64
	if err := w.db.WithContext(ctx).
		Model(&sugdomain.RegistroPredicao{}).
		Where("decidido_em IS NOT NULL AND convertido = ?", false).
		Count(&backlog).Error; err != nil {
		return
	}
	w.metrics.SetTreinamentoBacklog(int(backlog))
}
