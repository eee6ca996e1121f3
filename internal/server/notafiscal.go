package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	notadomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/notafiscal/domain"
)

type createItemRequest struct {
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

type createNotaRequest struct {
	Numero   string              `json:"numero"`
	Emitente string              `json:"emitente"`
	Itens    []createItemRequest `json:"itens"`
}

func (s *Server) CreateNota(c *gin.Context) {
	var req createNotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	itens := make([]notadomain.CreateItemRequest, 0, len(req.Itens))
	for _, item := range req.Itens {
		itens = append(itens, notadomain.CreateItemRequest{
			CodigoProduto: strings.TrimSpace(item.CodigoProduto),
			Descricao:     strings.TrimSpace(item.Descricao),
			Quantidade:    item.Quantidade,
			Unidade:       strings.TrimSpace(item.Unidade),
			Fracionavel:   item.Fracionavel,
			ValorUnitario: item.ValorUnitario,
			Peso:          item.Peso,
			Volume:        item.Volume,
			Categoria:     strings.ToUpper(strings.TrimSpace(item.Categoria)),
		})
	}

	nota, err := s.notaSvc.Create(c.Request.Context(), notadomain.CreateNotaRequest{
		Numero:   strings.TrimSpace(req.Numero),
		Emitente: strings.TrimSpace(req.Emitente),
		Itens:    itens,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, nota)
}

func (s *Server) GetNota(c *gin.Context) {
	notaID := c.Param("id")
	if notaID == "" {
		AbortWithError(c, newValidationError("id", "missing_id", "nota id is required"))
		return
	}

	if nota, ok := s.notaCache.Get(notaID); ok {
		c.JSON(http.StatusOK, nota)
		return
	}

	nota, err := s.notaSvc.GetByID(c.Request.Context(), notaID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.notaCache.Set(notaID, nota, notaCacheTTL)
	c.JSON(http.StatusOK, nota)
}

func (s *Server) ListNotas(c *gin.Context) {
	notas, err := s.notaSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": notas})
}
