package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/talobank/backend/internal/dialog"
	"github.com/talobank/backend/internal/services"
)

// Dispatcher processes one inbound conversation event.
type Dispatcher interface {
	Handle(ctx context.Context, ev dialog.Event) error
}

type WebhookHandler struct {
	engine    Dispatcher
	validator *services.ValidationHelper
}

func NewWebhookHandler(engine Dispatcher) *WebhookHandler {
	return &WebhookHandler{
		engine:    engine,
		validator: services.NewValidationHelper(),
	}
}

type inboundEvent struct {
	ExternalID string `json:"externalId" validate:"required"`
	Text       string `json:"text"`
	Payload    string `json:"payload"`
	MessageID  int    `json:"messageId"`
}

// HandleEvent receives one update from the messaging gateway and feeds it to
// the dialog engine.
func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var ev inboundEvent
	if err := dec.Decode(&ev); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&ev); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	err := h.engine.Handle(r.Context(), dialog.Event{
		ExternalID: ev.ExternalID,
		Text:       ev.Text,
		Payload:    ev.Payload,
		MessageID:  ev.MessageID,
	})
	if err != nil {
		log.Printf("[WEBHOOK] Event from %s failed: %v", ev.ExternalID, err)
		services.SendErrorResponse(w, "Event processing failed", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
