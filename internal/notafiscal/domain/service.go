package domain

import (
	"context"
	"errors"
)

type CreateItemRequest struct {
	CodigoProduto string  `json:"codigo_produto"`
	Descricao     string  `json:"descricao"`
	Quantidade    float64 `json:"quantidade"`
	Unidade       string  `json:"unidade"`
	Fracionavel   bool    `json:"fracionavel"`
	ValorUnitario float64 `json:"valor_unitario"`
	Peso          float64 `json:"peso"`
	Volume        float64 `json:"volume"`
	Categoria     string  `json:"categoria"`
}

type CreateNotaRequest struct {
	Numero   string              `json:"numero"`
	Emitente string              `json:"emitente"`
	Itens    []CreateItemRequest `json:"itens"`
}

type Service interface {
	Create(ctx context.Context, req CreateNotaRequest) (*NotaFiscal, error)
	GetByID(ctx context.Context, id string) (*NotaFiscal, error)
	List(ctx context.Context) ([]NotaFiscal, error)
}

var (
	ErrInvalidNotaID     = errors.New("invalid_nota_id")
	ErrNotaNotFound      = errors.New("nota_not_found")
	ErrNumeroObrigatorio = errors.New("numero_obrigatorio")
	ErrNotaSemItens      = errors.New("nota_sem_itens")
	ErrItemInvalido      = errors.New("item_invalido")
	ErrNumeroDuplicado   = errors.New("numero_duplicado")
)
