package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/audit/domain"
	cargadomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/carga/domain"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/clock"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/config"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/desmembramento/alocacao"
	desmdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/desmembramento/domain"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/events"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/observability/metrics"
	notadomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/notafiscal/domain"
	sugdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Config      config.Config
	Clock       clock.Clock
	SugestaoSvc sugdomain.Service
	Audit       auditdomain.Service
	Outbox      *events.Outbox
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	sugestaoSvc sugdomain.Service
	audit       auditdomain.Service
	outbox      *events.Outbox

	tolerancia float64
	metrics    *metrics.EngineMetrics
}

func NewService(p ServiceParam) desmdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("desmembramento.service"),
		genID: p.GenID,
		clock: p.Clock,

		sugestaoSvc: p.SugestaoSvc,
		audit:       p.Audit,
		outbox:      p.Outbox,

		tolerancia: p.Config.Engine.ToleranciaDivergencia,
		metrics: metrics.EngineWithConfig(metrics.Config{
			Environment: p.Config.Environment,
		}),
	}
}

// Desmembrar runs the read-check-create sequence inside one transaction
// with the nota row locked, so a concurrent second call observes either
// the lock or the already-created cargas and fails with
// ErrNotaJaDesmembrada. No partial cargas survive an error.
func (s *Service) Desmembrar(ctx context.Context, notaID string, numeroCargas int, metodo desmdomain.Metodo) (*desmdomain.ResultadoDesmembramento, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(notaID))
	if err != nil {
		s.metrics.IncDesmembramento("rejected")
		return nil, notadomain.ErrInvalidNotaID
	}
	if metodo != desmdomain.MetodoAutomatico && metodo != desmdomain.MetodoManual {
		s.metrics.IncDesmembramento("rejected")
		return nil, desmdomain.ErrMetodoInvalido
	}

	var (
		nota      notadomain.NotaFiscal
		cargas    []cargadomain.Carga
		validacao alocacao.ResultadoValidacao
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockNota(ctx, tx, id); err != nil {
			return err
		}

		findErr := tx.Preload("Itens").First(&nota, "id = ?", id).Error
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return notadomain.ErrNotaNotFound
		}
		if findErr != nil {
			return findErr
		}

		var existentes int64
		if err := tx.Model(&cargadomain.Carga{}).
			Where("nota_id = ?", id).
			Count(&existentes).Error; err != nil {
			return err
		}
		if existentes > 0 {
			return desmdomain.ErrNotaJaDesmembrada
		}

		plano, err := alocacao.Alocar(&nota, numeroCargas)
		if err != nil {
			return err
		}

		cargas = s.materializar(id, plano)
		for i := range cargas {
			if err := tx.Create(&cargas[i]).Error; err != nil {
				return err
			}
		}

		validacao = alocacao.Validar(&nota, cargas, s.tolerancia)
		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventNotaDesmembrada,
			Payload: events.NotaDesmembradaPayload{
				NotaID:       id.String(),
				NumeroCargas: numeroCargas,
				Metodo:       string(metodo),
				Divergencia:  validacao.ValorDivergencia,
			}.ToMap(),
			DedupeKey: "nota.desmembrada:" + id.String(),
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, desmdomain.ErrNotaJaDesmembrada):
			s.metrics.IncDesmembramento("already_split")
		default:
			s.metrics.IncDesmembramento("rejected")
		}
		return nil, err
	}

	s.metrics.IncDesmembramento("success")
	s.metrics.ObserveDivergencia(validacao.PorcentagemDivergencia)
	if !validacao.Valido {
		s.log.Warn("divergence above tolerance",
			zap.String("nota_id", id.String()),
			zap.Float64("porcentagem", validacao.PorcentagemDivergencia),
			zap.Float64("valor", validacao.ValorDivergencia),
		)
	}

	// Outcome feedback and auditing are best effort relative to the
	// split already committed.
	distribuicao := distribuicaoDe(cargas, nota.ValorTotal)
	if err := s.sugestaoSvc.RegistrarDecisao(ctx, id, numeroCargas, distribuicao); err != nil {
		s.log.Warn("failed to record split outcome", zap.String("nota_id", id.String()), zap.Error(err))
	}
	if err := s.audit.Registrar(ctx, auditdomain.AcaoNotaDesmembrada, "nota_fiscal", id, map[string]any{
		"numero_cargas": numeroCargas,
		"metodo":        string(metodo),
		"divergencia":   validacao.ValorDivergencia,
	}); err != nil {
		s.log.Warn("failed to audit split", zap.String("nota_id", id.String()), zap.Error(err))
	}

	return &desmdomain.ResultadoDesmembramento{
		Cargas:    cargas,
		Validacao: validacao,
	}, nil
}

func (s *Service) Validar(ctx context.Context, notaID string) (*alocacao.ResultadoValidacao, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(notaID))
	if err != nil {
		return nil, notadomain.ErrInvalidNotaID
	}

	var nota notadomain.NotaFiscal
	findErr := s.db.WithContext(ctx).First(&nota, "id = ?", id).Error
	if errors.Is(findErr, gorm.ErrRecordNotFound) {
		return nil, notadomain.ErrNotaNotFound
	}
	if findErr != nil {
		return nil, findErr
	}

	var cargas []cargadomain.Carga
	if err := s.db.WithContext(ctx).
		Order("sequencia ASC").
		Find(&cargas, "nota_id = ?", id).Error; err != nil {
		return nil, err
	}
	if len(cargas) == 0 {
		return nil, desmdomain.ErrNotaSemCargas
	}

	validacao := alocacao.Validar(&nota, cargas, s.tolerancia)
	return &validacao, nil
}

func (s *Service) ConfirmarCarga(ctx context.Context, cargaID string) (*cargadomain.Carga, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(cargaID))
	if err != nil {
		return nil, cargadomain.ErrInvalidCargaID
	}

	var carga cargadomain.Carga
	findErr := s.db.WithContext(ctx).First(&carga, "id = ?", id).Error
	if errors.Is(findErr, gorm.ErrRecordNotFound) {
		return nil, cargadomain.ErrCargaNotFound
	}
	if findErr != nil {
		return nil, findErr
	}
	if carga.Status == cargadomain.CargaStatusConfirmada {
		return nil, cargadomain.ErrCargaConfirmada
	}

	now := s.clock.Now()
	if err := s.db.WithContext(ctx).Model(&carga).Updates(map[string]any{
		"status":     cargadomain.CargaStatusConfirmada,
		"updated_at": now,
	}).Error; err != nil {
		return nil, err
	}
	carga.Status = cargadomain.CargaStatusConfirmada

	if err := s.outbox.Publish(ctx, events.Event{
		Type: events.EventCargaConfirmada,
		Payload: map[string]any{
			"carga_id":  id.String(),
			"nota_id":   carga.NotaID.String(),
			"sequencia": carga.Sequencia,
		},
		DedupeKey: "carga.confirmada:" + id.String(),
	}); err != nil {
		s.log.Warn("failed to publish carga confirmation", zap.Error(err))
	}
	if err := s.audit.Registrar(ctx, auditdomain.AcaoCargaConfirmada, "carga", id, map[string]any{
		"nota_id":   carga.NotaID.String(),
		"sequencia": carga.Sequencia,
	}); err != nil {
		s.log.Warn("failed to audit carga confirmation", zap.Error(err))
	}
	return &carga, nil
}

// lockNota takes the nota row lock on dialects that support it; elsewhere
// the surrounding transaction plus the carga count check stand guard.
func (s *Service) lockNota(ctx context.Context, tx *gorm.DB, id snowflake.ID) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	var locked snowflake.ID
	return tx.WithContext(ctx).Raw(
		`SELECT id FROM notas_fiscais WHERE id = ? FOR UPDATE`,
		id,
	).Scan(&locked).Error
}

func (s *Service) materializar(notaID snowflake.ID, plano []alocacao.CargaPlanejada) []cargadomain.Carga {
	now := s.clock.Now()
	cargas := make([]cargadomain.Carga, len(plano))
	for i, planejada := range plano {
		carga := cargadomain.Carga{
			ID:          s.genID.Generate(),
			NotaID:      notaID,
			Sequencia:   planejada.Sequencia,
			Status:      cargadomain.CargaStatusCriada,
			ValorTotal:  planejada.ValorTotal,
			PesoTotal:   planejada.PesoTotal,
			VolumeTotal: planejada.VolumeTotal,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		for _, fragmento := range planejada.Fragmentos {
			carga.Itens = append(carga.Itens, cargadomain.ItemCarga{
				ID:            s.genID.Generate(),
				CargaID:       carga.ID,
				NotaID:        notaID,
				ItemNotaID:    fragmento.ItemNotaID,
				CodigoProduto: fragmento.CodigoProduto,
				Quantidade:    fragmento.Quantidade,
				Valor:         fragmento.Valor,
				Peso:          fragmento.Peso,
				Volume:        fragmento.Volume,
				CreatedAt:     now,
			})
		}
		cargas[i] = carga
	}
	return cargas
}

func distribuicaoDe(cargas []cargadomain.Carga, valorTotal float64) []float64 {
	shares := make([]float64, len(cargas))
	if valorTotal == 0 {
		return shares
	}
	for i, carga := range cargas {
		shares[i] = carga.ValorTotal / valorTotal
	}
	return shares
}
