// Package domain holds the learning-side records: the labeled corpus, the
// prediction audit trail and the versioned model descriptors.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Fonte identifies which path produced a suggestion.
const (
	FonteSimilaridade = "similaridade"
	FonteModelo       = "modelo"
	FonteHeuristica   = "heuristica"
)

// ExemploTreinamento is one labeled example of a confirmed split. It
// outlives the nota it came from.
type ExemploTreinamento struct {
	ID           snowflake.ID   `gorm:"primaryKey" json:"id"`
	NotaID       snowflake.ID   `gorm:"not null" json:"nota_id"`
	Features     datatypes.JSON `gorm:"type:jsonb;not null" json:"features"`
	NumeroCargas int            `gorm:"not null" json:"numero_cargas"`
	Distribuicao datatypes.JSON `gorm:"type:jsonb;not null" json:"distribuicao"`
	Fonte        string         `gorm:"type:text;not null" json:"fonte"`
	Confianca    float64        `gorm:"not null;default:0" json:"confianca"`
	// ConsumidoTreino marks examples already folded into the last
	// training run.
	ConsumidoTreino bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (ExemploTreinamento) TableName() string { return "exemplos_treinamento" }

// RegistroPredicao is the append-only snapshot of one suggestion event and
// its eventual human outcome.
type RegistroPredicao struct {
	ID                   snowflake.ID   `gorm:"primaryKey" json:"id"`
	NotaID               snowflake.ID   `gorm:"not null;index" json:"nota_id"`
	Features             datatypes.JSON `gorm:"type:jsonb;not null" json:"features"`
	Fonte                string         `gorm:"type:text;not null" json:"fonte"`
	NumeroCargasSugerido int            `gorm:"not null" json:"numero_cargas_sugerido"`
	Distribuicao         datatypes.JSON `gorm:"type:jsonb;not null" json:"distribuicao"`
	Confianca            float64        `gorm:"not null" json:"confianca"`
	Aceito               *bool          `gorm:"" json:"aceito,omitempty"`
	NumeroCargasFinal    *int           `gorm:"" json:"numero_cargas_final,omitempty"`
	DistribuicaoFinal    datatypes.JSON `gorm:"type:jsonb" json:"distribuicao_final,omitempty"`
	DecididoEm           *time.Time     `gorm:"" json:"decidido_em,omitempty"`
	// Convertido marks records already turned into training examples.
	Convertido bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (RegistroPredicao) TableName() string { return "registros_predicao" }

// ModeloDescritor describes a trained model artifact. At most one row is
// active at any time.
type ModeloDescritor struct {
	ID         snowflake.ID   `gorm:"primaryKey" json:"id"`
	Versao     string         `gorm:"type:text;not null;uniqueIndex" json:"versao"`
	Algoritmo  string         `gorm:"type:text;not null" json:"algoritmo"`
	Parametros datatypes.JSON `gorm:"type:jsonb;not null" json:"parametros"`
	Acuracia   float64        `gorm:"not null;default:0" json:"acuracia"`
	Precisao   float64        `gorm:"not null;default:0" json:"precisao"`
	Recall     float64        `gorm:"not null;default:0" json:"recall"`
	F1         float64        `gorm:"not null;default:0" json:"f1"`
	Ativo      bool           `gorm:"not null;default:false" json:"ativo"`
	AtivadoEm  *time.Time     `gorm:"" json:"ativado_em,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (ModeloDescritor) TableName() string { return "modelos" }
