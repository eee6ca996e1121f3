package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	sugestaodomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao/domain"
)

type createModeloRequest struct {
	Versao     string         `json:"versao"`
	Algoritmo  string         `json:"algoritmo"`
	Parametros map[string]any `json:"parametros"`
}

func (s *Server) CreateModelo(c *gin.Context) {
	var req createModeloRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	modelo, err := s.modeloSvc.Criar(c.Request.Context(), sugestaodomain.CriarModeloRequest{
		Versao:     strings.TrimSpace(req.Versao),
		Algoritmo:  strings.ToLower(strings.TrimSpace(req.Algoritmo)),
		Parametros: req.Parametros,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, modelo)
}

func (s *Server) GetModeloAtivo(c *gin.Context) {
	modelo, err := s.modeloSvc.Ativo(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, modelo)
}

func (s *Server) ListModelos(c *gin.Context) {
	modelos, err := s.modeloSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": modelos})
}

func (s *Server) PromoverModelo(c *gin.Context) {
	modeloID := c.Param("id")
	if modeloID == "" {
		AbortWithError(c, newValidationError("id", "missing_id", "modelo id is required"))
		return
	}

	modelo, err := s.modeloSvc.Promover(c.Request.Context(), modeloID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, modelo)
}
