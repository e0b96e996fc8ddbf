package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go-item-recovery/internal/model"
	"go-item-recovery/internal/suppression"
)

// EventsHandler ingests wear and destruction reports from the game
// server integration and feeds them to the suppression engine.
type EventsHandler struct {
	engine *suppression.Engine
}

func NewEventsHandler(engine *suppression.Engine) *EventsHandler {
	return &EventsHandler{engine: engine}
}

type wearEventRequest struct {
	UserID string             `json:"user_id"`
	Item   model.ItemSnapshot `json:"item"`
}

type destructionEventRequest struct {
	UserID  string             `json:"user_id"`
	Item    model.ItemSnapshot `json:"item"`
	Context model.WorldContext `json:"context"`
}

// Wear records the pre-breakage snapshot of an item about to lose
// durability. The snapshot substitutes for the destruction report that
// may follow, which often arrives already stripped of metadata.
func (h *EventsHandler) Wear(w http.ResponseWriter, r *http.Request) {
	var req wearEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", model.ErrInvalidInput, err))
		return
	}

	if strings.TrimSpace(req.UserID) == "" || req.Item.Type == "" {
		writeError(w, fmt.Errorf("%w: user_id and item.type are required", model.ErrInvalidInput))
		return
	}

	h.engine.ReportWear(req.UserID, req.Item)
	writeSuccess(w, http.StatusAccepted, map[string]string{"status": "accepted"}, nil)
}

// Destruction reports a destroyed item. Acceptance is asynchronous:
// the engine settles the event before deciding, so the response only
// acknowledges receipt. Rejected events are dropped silently.
func (h *EventsHandler) Destruction(w http.ResponseWriter, r *http.Request) {
	var req destructionEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", model.ErrInvalidInput, err))
		return
	}

	if strings.TrimSpace(req.UserID) == "" || req.Item.Type == "" {
		writeError(w, fmt.Errorf("%w: user_id and item.type are required", model.ErrInvalidInput))
		return
	}

	h.engine.ReportDestroyed(req.UserID, req.Item, req.Context)

	slog.Debug("destruction event received",
		"user_id", req.UserID, "item_type", req.Item.Type,
		"world", req.Context.World, "ip", clientIP(r))
	writeSuccess(w, http.StatusAccepted, map[string]string{"status": "accepted"}, nil)
}
