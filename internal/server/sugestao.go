package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetSugestao(c *gin.Context) {
	notaID := c.Param("id")
	if notaID == "" {
		AbortWithError(c, newValidationError("id", "missing_id", "nota id is required"))
		return
	}

	sugestao, err := s.sugestaoSvc.Sugerir(c.Request.Context(), notaID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sugestao)
}
