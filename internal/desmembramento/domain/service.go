package domain

import (
	"context"
	"errors"

	cargadomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/carga/domain"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/desmembramento/alocacao"
)

// Metodo records whether the human accepted the engine's count or typed
// their own.
type Metodo string

const (
	MetodoAutomatico Metodo = "AUTOMATICO"
	MetodoManual     Metodo = "MANUAL"
)

type ResultadoDesmembramento struct {
	Cargas    []cargadomain.Carga         `json:"cargas"`
	Validacao alocacao.ResultadoValidacao `json:"validacao"`
}

type Service interface {
	// Desmembrar splits the nota across numeroCargas cargas, exactly
	// once per nota.
	Desmembrar(ctx context.Context, notaID string, numeroCargas int, metodo Metodo) (*ResultadoDesmembramento, error)
	// Validar recomputes the divergence report for an already-split nota.
	Validar(ctx context.Context, notaID string) (*alocacao.ResultadoValidacao, error)
	ConfirmarCarga(ctx context.Context, cargaID string) (*cargadomain.Carga, error)
}

var (
	ErrNotaJaDesmembrada = errors.New("nota_ja_desmembrada")
	ErrMetodoInvalido    = errors.New("metodo_invalido")
	ErrNotaSemCargas     = errors.New("nota_sem_cargas")
)
