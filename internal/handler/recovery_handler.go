package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-item-recovery/internal/model"
	"go-item-recovery/internal/service"
)

type RecoveryHandler struct {
	recovery *service.RecoveryService
}

func NewRecoveryHandler(recovery *service.RecoveryService) *RecoveryHandler {
	return &RecoveryHandler{recovery: recovery}
}

type recoverableListData struct {
	Items []model.RecoverableItem `json:"items"`
}

func (h *RecoveryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, model.ErrUnauthorized)
		return
	}

	page := parseIntOrDefault(r.URL.Query().Get("page"), 1)
	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 45)

	items, meta, err := h.recovery.ListRecoverable(r.Context(), userID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, recoverableListData{Items: items}, &meta)
}

func (h *RecoveryHandler) Restore(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, model.ErrUnauthorized)
		return
	}

	fingerprint := strings.TrimSpace(chi.URLParam(r, "fingerprint"))
	if fingerprint == "" {
		writeError(w, fmt.Errorf("%w: fingerprint is required", model.ErrInvalidInput))
		return
	}

	receipt, err := h.recovery.Restore(r.Context(), userID, fingerprint)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, receipt, nil)
}

func (h *RecoveryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, model.ErrUnauthorized)
		return
	}

	fingerprint := strings.TrimSpace(chi.URLParam(r, "fingerprint"))
	if fingerprint == "" {
		writeError(w, fmt.Errorf("%w: fingerprint is required", model.ErrInvalidInput))
		return
	}

	removed, err := h.recovery.Delete(r.Context(), userID, fingerprint)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, removed, nil)
}
