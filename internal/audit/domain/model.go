package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ActorType represents who triggered an action.
type ActorType string

const (
	ActorTypeUser   ActorType = "user"
	ActorTypeSystem ActorType = "system"
)

// Well-known audited actions.
const (
	AcaoNotaDesmembrada  = "nota.desmembrada"
	AcaoCargaConfirmada  = "carga.confirmada"
	AcaoModeloCriado     = "modelo.criado"
	AcaoModeloPromovido  = "modelo.promovido"
	AcaoCorpusAtualizado = "corpus.atualizado"
)

// RegistroAuditoria captures an immutable record of an administrative or
// allocation action. Rows are never updated or deleted.
type RegistroAuditoria struct {
	ID         snowflake.ID      `gorm:"primaryKey"`
	ActorType  string            `gorm:"type:text;not null"`
	ActorID    *string           `gorm:"type:text"`
	Acao       string            `gorm:"type:text;not null;index"`
	TargetType string            `gorm:"type:text;not null"`
	TargetID   *string           `gorm:"type:text"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (RegistroAuditoria) TableName() string { return "registros_auditoria" }
