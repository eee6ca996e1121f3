package engine

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/audit/domain"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/events"
	sugdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ModeloAtivo pairs the active descriptor with its ready-to-use inference
// strategy.
type ModeloAtivo struct {
	Descritor  sugdomain.ModeloDescritor
	Inferencia Inferencia
}

// Registry owns the versioned model store. The active model is held
// behind an atomic pointer: inference reads never block a promotion in
// flight, they just see the previous model until the swap lands.
type Registry struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node

	audit  auditdomain.Service
	outbox *events.Outbox

	ativo atomic.Pointer[ModeloAtivo]
}

type RegistryParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Audit  auditdomain.Service
	Outbox *events.Outbox
}

func NewRegistry(p RegistryParam) *Registry {
	return &Registry{
		db:     p.DB,
		log:    p.Log.Named("sugestao.registry"),
		genID:  p.GenID,
		audit:  p.Audit,
		outbox: p.Outbox,
	}
}

// Carregar loads the active model, if any, into memory.
func (r *Registry) Carregar(ctx context.Context) error {
	var descritor sugdomain.ModeloDescritor
	err := r.db.WithContext(ctx).First(&descritor, "ativo = ?", true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	inferencia, err := NovaInferencia(descritor)
	if err != nil {
		// A broken active model must not take suggestions down; the
		// engine falls back to similarity.
		r.log.Warn("active model unusable, falling back to similarity",
			zap.String("modelo_id", descritor.ID.String()),
			zap.Error(err),
		)
		return nil
	}

	r.ativo.Store(&ModeloAtivo{Descritor: descritor, Inferencia: inferencia})
	r.log.Info("active model loaded",
		zap.String("modelo_id", descritor.ID.String()),
		zap.String("versao", descritor.Versao),
	)
	return nil
}

// Ativa returns the in-memory active model, or nil when none is usable.
func (r *Registry) Ativa() *ModeloAtivo {
	return r.ativo.Load()
}

// Ativo exposes the active descriptor to callers that require a model
// rather than a fallback.
func (r *Registry) Ativo(context.Context) (*sugdomain.ModeloDescritor, error) {
	ativo := r.ativo.Load()
	if ativo == nil {
		return nil, sugdomain.ErrModeloIndisponivel
	}
	descritor := ativo.Descritor
	return &descritor, nil
}

func (r *Registry) Criar(ctx context.Context, req sugdomain.CriarModeloRequest) (*sugdomain.ModeloDescritor, error) {
	versao := strings.TrimSpace(req.Versao)
	if versao == "" {
		return nil, sugdomain.ErrVersaoObrigatoria
	}
	if req.Algoritmo != AlgoritmoLinear {
		return nil, sugdomain.ErrAlgoritmoInvalido
	}

	parametros, err := json.Marshal(req.Parametros)
	if err != nil {
		return nil, sugdomain.ErrParametrosInvalidos
	}

	descritor := sugdomain.ModeloDescritor{
		ID:         r.genID.Generate(),
		Versao:     versao,
		Algoritmo:  req.Algoritmo,
		Parametros: parametros,
	}
	if _, err := NovaInferencia(descritor); err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(&descritor).Error; err != nil {
		return nil, err
	}

	if err := r.audit.Registrar(ctx, auditdomain.AcaoModeloCriado, "modelo", descritor.ID, map[string]any{
		"versao":    descritor.Versao,
		"algoritmo": descritor.Algoritmo,
	}); err != nil {
		r.log.Warn("failed to audit model creation", zap.Error(err))
	}
	return &descritor, nil
}

// Promover activates a model. The previous active descriptor is
// deactivated in the same transaction, so at most one row ever carries
// the flag; the in-memory strategy swaps only after commit.
func (r *Registry) Promover(ctx context.Context, modeloID string) (*sugdomain.ModeloDescritor, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(modeloID))
	if err != nil {
		return nil, sugdomain.ErrInvalidModeloID
	}

	var descritor sugdomain.ModeloDescritor
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.First(&descritor, "id = ?", id).Error
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return sugdomain.ErrModeloNotFound
		}
		if findErr != nil {
			return findErr
		}

		now := time.Now().UTC()
		if err := tx.Model(&sugdomain.ModeloDescritor{}).
			Where("ativo = ?", true).
			Update("ativo", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&descritor).
			Updates(map[string]any{"ativo": true, "ativado_em": now}).Error; err != nil {
			return err
		}
		descritor.Ativo = true
		descritor.AtivadoEm = &now

		return r.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventModeloPromovido,
			Payload: events.ModeloPromovidoPayload{
				ModeloID: descritor.ID.String(),
				Versao:   descritor.Versao,
			}.ToMap(),
			DedupeKey: "modelo.promovido:" + descritor.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	inferencia, err := NovaInferencia(descritor)
	if err != nil {
		return nil, err
	}
	r.ativo.Store(&ModeloAtivo{Descritor: descritor, Inferencia: inferencia})

	if err := r.audit.Registrar(ctx, auditdomain.AcaoModeloPromovido, "modelo", descritor.ID, map[string]any{
		"versao": descritor.Versao,
	}); err != nil {
		r.log.Warn("failed to audit model promotion", zap.Error(err))
	}

	r.log.Info("model promoted",
		zap.String("modelo_id", descritor.ID.String()),
		zap.String("versao", descritor.Versao),
	)
	return &descritor, nil
}

func (r *Registry) List(ctx context.Context) ([]sugdomain.ModeloDescritor, error) {
	var modelos []sugdomain.ModeloDescritor
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&modelos).Error; err != nil {
		return nil, err
	}
	return modelos, nil
}
