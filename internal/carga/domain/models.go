// Package domain holds the shipment models produced by the allocation
// engine. Cargas are immutable after creation except for the status
// transition CRIADA -> CONFIRMADA.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CargaStatus string

const (
	CargaStatusCriada     CargaStatus = "CRIADA"
	CargaStatusConfirmada CargaStatus = "CONFIRMADA"
)

var (
	ErrInvalidCargaID  = errors.New("invalid_carga_id")
	ErrCargaNotFound   = errors.New("carga_not_found")
	ErrCargaConfirmada = errors.New("carga_ja_confirmada")
)

// Carga is one physical delivery load carved out of a nota fiscal.
type Carga struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	NotaID      snowflake.ID `gorm:"not null;index" json:"nota_id"`
	Sequencia   int          `gorm:"not null" json:"sequencia"`
	Status      CargaStatus  `gorm:"type:text;not null;default:CRIADA" json:"status"`
	ValorTotal  float64      `gorm:"not null" json:"valor_total"`
	PesoTotal   float64      `gorm:"not null;default:0" json:"peso_total"`
	VolumeTotal float64      `gorm:"not null;default:0" json:"volume_total"`
	Itens       []ItemCarga  `gorm:"foreignKey:CargaID" json:"itens"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Carga) TableName() string { return "cargas" }

// ItemCarga is the fragment of an invoiced line assigned to one carga.
type ItemCarga struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	CargaID       snowflake.ID `gorm:"not null;index" json:"-"`
	NotaID        snowflake.ID `gorm:"not null;index" json:"-"`
	ItemNotaID    snowflake.ID `gorm:"not null;index" json:"item_nota_id"`
	CodigoProduto string       `gorm:"type:text;not null" json:"codigo_produto"`
	Quantidade    float64      `gorm:"not null" json:"quantidade"`
	Valor         float64      `gorm:"not null" json:"valor"`
	Peso          float64      `gorm:"not null;default:0" json:"peso"`
	Volume        float64      `gorm:"not null;default:0" json:"volume"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (ItemCarga) TableName() string { return "itens_carga" }
