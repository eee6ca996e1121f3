package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/audit/domain"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/auditcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  auditdomain.Repository
}

func NewService(p ServiceParam) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

// Registrar appends one audit entry. Actor identity is taken from the
// request context, defaulting to the system actor for background work.
func (s *Service) Registrar(ctx context.Context, acao, targetType string, targetID snowflake.ID, metadata map[string]any) error {
	actorType, actorID := auditcontext.ActorFromContext(ctx)
	if actorType == "" {
		actorType = string(auditdomain.ActorTypeSystem)
	}

	payload := datatypes.JSONMap{}
	for key, value := range metadata {
		payload[key] = value
	}
	if requestID := auditcontext.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}

	entry := &auditdomain.RegistroAuditoria{
		ID:         s.genID.Generate(),
		ActorType:  actorType,
		Acao:       acao,
		TargetType: targetType,
		Metadata:   payload,
	}
	if actorID != "" {
		entry.ActorID = &actorID
	}
	if targetID != 0 {
		target := targetID.String()
		entry.TargetID = &target
	}

	if err := s.repo.Insert(ctx, s.db, entry); err != nil {
		s.log.Warn("failed to append audit entry", zap.String("acao", acao), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, filter auditdomain.ListFilter) ([]*auditdomain.RegistroAuditoria, error) {
	return s.repo.List(ctx, s.db, filter)
}
