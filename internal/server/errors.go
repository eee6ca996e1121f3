package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	cargadomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/carga/domain"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/desmembramento/alocacao"
	desmdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/desmembramento/domain"
	notadomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/notafiscal/domain"
	sugestaodomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao/domain"
)

// APIError is the wire shape for every non-2xx response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *APIError) Error() string { return e.Code }

func invalidRequestError() *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "invalid_request",
		Message: "request body could not be parsed",
	}
}

func newValidationError(field, code, message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    code,
		Message: message,
		Field:   field,
	}
}

// statusFor maps domain errors onto HTTP statuses. Unknown errors fall
// through to 500 without leaking their text.
func statusFor(err error) int {
	switch {
	case errors.Is(err, notadomain.ErrNotaNotFound),
		errors.Is(err, cargadomain.ErrCargaNotFound),
		errors.Is(err, sugestaodomain.ErrModeloNotFound):
		return http.StatusNotFound
	case errors.Is(err, desmdomain.ErrNotaJaDesmembrada):
		return http.StatusConflict
	case errors.Is(err, notadomain.ErrInvalidNotaID),
		errors.Is(err, notadomain.ErrNumeroObrigatorio),
		errors.Is(err, notadomain.ErrNotaSemItens),
		errors.Is(err, notadomain.ErrItemInvalido),
		errors.Is(err, notadomain.ErrNumeroDuplicado),
		errors.Is(err, cargadomain.ErrInvalidCargaID),
		errors.Is(err, cargadomain.ErrCargaConfirmada),
		errors.Is(err, alocacao.ErrNumeroCargasInvalido),
		errors.Is(err, desmdomain.ErrMetodoInvalido),
		errors.Is(err, desmdomain.ErrNotaSemCargas),
		errors.Is(err, sugestaodomain.ErrInvalidModeloID),
		errors.Is(err, sugestaodomain.ErrVersaoObrigatoria),
		errors.Is(err, sugestaodomain.ErrAlgoritmoInvalido),
		errors.Is(err, sugestaodomain.ErrParametrosInvalidos):
		return http.StatusBadRequest
	case errors.Is(err, sugestaodomain.ErrModeloIndisponivel):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func AbortWithError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}

	status := statusFor(err)
	payload := &APIError{Status: status, Code: err.Error()}
	if status == http.StatusInternalServerError {
		payload.Code = "internal_error"
		payload.Message = "unexpected error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": payload})
}
