package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	cargadomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/carga/domain"
	desmdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/desmembramento/domain"
	notadomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/notafiscal/domain"
)

type desmembrarRequest struct {
	NumeroCargas int    `json:"numero_cargas"`
	Metodo       string `json:"metodo"`
}

func (s *Server) Desmembrar(c *gin.Context) {
	notaID := c.Param("id")
	if notaID == "" {
		AbortWithError(c, newValidationError("id", "missing_id", "nota id is required"))
		return
	}

	var req desmembrarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	metodo := desmdomain.Metodo(strings.ToUpper(strings.TrimSpace(req.Metodo)))
	if metodo == "" {
		metodo = desmdomain.MetodoManual
	}

	resultado, err := s.desmSvc.Desmembrar(c.Request.Context(), notaID, req.NumeroCargas, metodo)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resultado)
}

func (s *Server) GetValidacao(c *gin.Context) {
	notaID := c.Param("id")
	if notaID == "" {
		AbortWithError(c, newValidationError("id", "missing_id", "nota id is required"))
		return
	}

	resultado, err := s.desmSvc.Validar(c.Request.Context(), notaID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resultado)
}

func (s *Server) ListCargas(c *gin.Context) {
	notaID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, notadomain.ErrInvalidNotaID)
		return
	}

	var cargas []cargadomain.Carga
	if err := s.db.WithContext(c.Request.Context()).
		Preload("Itens").
		Where("nota_id = ?", notaID).
		Order("sequencia ASC").
		Find(&cargas).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cargas})
}

func (s *Server) ConfirmarCarga(c *gin.Context) {
	cargaID := c.Param("id")
	if cargaID == "" {
		AbortWithError(c, newValidationError("id", "missing_id", "carga id is required"))
		return
	}

	carga, err := s.desmSvc.ConfirmarCarga(c.Request.Context(), cargaID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, carga)
}
