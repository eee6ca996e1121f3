// Package domain holds the fiscal document models. A nota fiscal is
// immutable once ingested; splitting it only adds cargas alongside it.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// NotaFiscal is the fiscal document with its legally fixed totals.
type NotaFiscal struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Numero      string       `gorm:"type:text;not null;uniqueIndex" json:"numero"`
	Emitente    string       `gorm:"type:text;not null;default:''" json:"emitente"`
	ValorTotal  float64      `gorm:"not null" json:"valor_total"`
	PesoTotal   float64      `gorm:"not null;default:0" json:"peso_total"`
	VolumeTotal float64      `gorm:"not null;default:0" json:"volume_total"`
	Itens       []ItemNota   `gorm:"foreignKey:NotaID" json:"itens"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (NotaFiscal) TableName() string { return "notas_fiscais" }

// ItemNota is a single invoiced line.
type ItemNota struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	NotaID        snowflake.ID `gorm:"not null;index" json:"-"`
	CodigoProduto string       `gorm:"type:text;not null" json:"codigo_produto"`
	Descricao     string       `gorm:"type:text;not null;default:''" json:"descricao"`
	Quantidade    float64      `gorm:"not null" json:"quantidade"`
	Unidade       string       `gorm:"type:text;not null;default:UN" json:"unidade"`
	// Fracionavel marks units that may be split below whole lots (kg, l).
	Fracionavel   bool    `gorm:"not null;default:false" json:"fracionavel"`
	ValorUnitario float64 `gorm:"not null" json:"valor_unitario"`
	ValorTotal    float64 `gorm:"not null" json:"valor_total"`
	Peso          float64 `gorm:"not null;default:0" json:"peso"`
	Volume        float64 `gorm:"not null;default:0" json:"volume"`
	Categoria     string  `gorm:"type:text;not null;default:''" json:"categoria"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (ItemNota) TableName() string { return "itens_nota" }
