package events

// Domain event types emitted through the outbox.
const (
	EventNotaDesmembrada = "nota.desmembrada"
	EventCargaConfirmada = "carga.confirmada"
	EventModeloPromovido = "modelo.promovido"
)

// NotaDesmembradaPayload captures the minimal data downstream consumers
// need to react to a split.
type NotaDesmembradaPayload struct {
	NotaID       string  `json:"nota_id"`
	NumeroCargas int     `json:"numero_cargas"`
	Metodo       string  `json:"metodo"`
	Divergencia  float64 `json:"divergencia"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p NotaDesmembradaPayload) ToMap() map[string]any {
	return map[string]any{
		"nota_id":       p.NotaID,
		"numero_cargas": p.NumeroCargas,
		"metodo":        p.Metodo,
		"divergencia":   p.Divergencia,
	}
}

// ModeloPromovidoPayload announces a model activation.
type ModeloPromovidoPayload struct {
	ModeloID string `json:"modelo_id"`
	Versao   string `json:"versao"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p ModeloPromovidoPayload) ToMap() map[string]any {
	return map[string]any{
		"modelo_id": p.ModeloID,
		"versao":    p.Versao,
	}
}
