package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/features"
)

// Sugestao is the engine's recommendation prior to human confirmation.
type Sugestao struct {
	NumeroCargasSugerido int            `json:"numero_cargas_sugerido"`
	DistribuicaoSugerida []float64      `json:"distribuicao_sugerida"`
	Confianca            float64        `json:"confianca"`
	Fonte                string         `json:"fonte"`
	Features             features.Vetor `json:"features"`
}

type Service interface {
	// Sugerir recommends a carga count for the nota. Every call leaves a
	// RegistroPredicao behind, accepted or not.
	Sugerir(ctx context.Context, notaID string) (*Sugestao, error)
	// RegistrarDecisao records the human outcome for the nota's latest
	// open prediction.
	RegistrarDecisao(ctx context.Context, notaID snowflake.ID, numeroCargasFinal int, distribuicaoFinal []float64) error
}

type CriarModeloRequest struct {
	Versao     string         `json:"versao"`
	Algoritmo  string         `json:"algoritmo"`
	Parametros map[string]any `json:"parametros"`
}

type ModeloService interface {
	Criar(ctx context.Context, req CriarModeloRequest) (*ModeloDescritor, error)
	// Promover activates a model, atomically deactivating the previous
	// active one.
	Promover(ctx context.Context, modeloID string) (*ModeloDescritor, error)
	List(ctx context.Context) ([]ModeloDescritor, error)
	// Ativo returns the currently active model, ErrModeloIndisponivel
	// when none is usable.
	Ativo(ctx context.Context) (*ModeloDescritor, error)
}

var (
	ErrInvalidModeloID     = errors.New("invalid_modelo_id")
	ErrModeloNotFound      = errors.New("modelo_not_found")
	ErrModeloIndisponivel  = errors.New("modelo_indisponivel")
	ErrVersaoObrigatoria   = errors.New("versao_obrigatoria")
	ErrAlgoritmoInvalido   = errors.New("algoritmo_invalido")
	ErrParametrosInvalidos = errors.New("parametros_invalidos")
)
