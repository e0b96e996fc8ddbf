package handler

import (
	"context"
	"net/http"
	"strings"

	"go-item-recovery/internal/model"
)

type recoveryEventLister interface {
	ListByUser(ctx context.Context, userID string, page int, limit int) ([]model.RecoveryEvent, model.Meta, error)
}

// AuditHandler exposes the restore/delete audit trail to admins.
type AuditHandler struct {
	events recoveryEventLister
}

func NewAuditHandler(events recoveryEventLister) *AuditHandler {
	return &AuditHandler{events: events}
}

type auditListData struct {
	Items []model.RecoveryEvent `json:"items"`
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	items, meta, err := h.events.ListByUser(r.Context(),
		strings.TrimSpace(query.Get("user_id")),
		parseIntOrDefault(query.Get("page"), 1),
		parseIntOrDefault(query.Get("limit"), 50),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, auditListData{Items: items}, &meta)
}
