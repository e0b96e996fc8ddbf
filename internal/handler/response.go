package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"go-item-recovery/internal/model"
	"go-item-recovery/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, model.ErrEntryNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Recovery entry not found"
	} else if errors.Is(err, model.ErrBlacklisted) {
		status = http.StatusForbidden
		body.Code = "BLACKLISTED"
		body.Message = "This item cannot be restored"
	} else if errors.Is(err, model.ErrCapacityExceeded) {
		status = http.StatusConflict
		body.Code = "CAPACITY_EXCEEDED"
		body.Message = "No room in the user's holdings"
	} else if errors.Is(err, model.ErrInsufficientFunds) {
		status = http.StatusPaymentRequired
		body.Code = "INSUFFICIENT_FUNDS"
		body.Message = "Balance cannot cover the restoration cost"
	} else if errors.Is(err, model.ErrBalanceService) {
		// Presented as insufficient funds; the log carries the real cause.
		status = http.StatusPaymentRequired
		body.Code = "INSUFFICIENT_FUNDS"
		body.Message = "Balance cannot cover the restoration cost"
		slog.Error("balance service failure", "error", err.Error())
	} else if errors.Is(err, model.ErrHoldingsService) {
		status = http.StatusBadGateway
		body.Code = "HOLDINGS_UNAVAILABLE"
		body.Message = "The holdings service is unavailable"
	} else if errors.Is(err, model.ErrUnauthorized) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Authentication required"
	} else if errors.Is(err, model.ErrForbidden) {
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Access denied"
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
		body.Details = err.Error()
	} else if errors.Is(err, model.ErrPersistence) {
		status = http.StatusServiceUnavailable
		body.Code = "PERSISTENCE_ERROR"
		body.Message = "The ledger store is unavailable"
	} else {
		// Log unclassified errors so they are visible in container logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}

func parseIntOrDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}

	return v
}
