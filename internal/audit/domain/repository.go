package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Acao       string
	TargetType string
	TargetID   string
	ActorType  string
	StartAt    *time.Time
	EndAt      *time.Time
	Limit      int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *RegistroAuditoria) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*RegistroAuditoria, error)
}

// Service appends audit entries; it never exposes mutation of past rows.
type Service interface {
	Registrar(ctx context.Context, acao, targetType string, targetID snowflake.ID, metadata map[string]any) error
	List(ctx context.Context, filter ListFilter) ([]*RegistroAuditoria, error)
}
