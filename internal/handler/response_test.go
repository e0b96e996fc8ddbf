package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-item-recovery/internal/model"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()
	var resp model.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp
}

func TestWriteError_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", model.ErrEntryNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"blacklisted", model.ErrBlacklisted, http.StatusForbidden, "BLACKLISTED"},
		{"capacity", model.ErrCapacityExceeded, http.StatusConflict, "CAPACITY_EXCEEDED"},
		{"funds", model.ErrInsufficientFunds, http.StatusPaymentRequired, "INSUFFICIENT_FUNDS"},
		{"balance down reads as insufficient funds", model.ErrBalanceService, http.StatusPaymentRequired, "INSUFFICIENT_FUNDS"},
		{"holdings down", model.ErrHoldingsService, http.StatusBadGateway, "HOLDINGS_UNAVAILABLE"},
		{"persistence", model.ErrPersistence, http.StatusServiceUnavailable, "PERSISTENCE_ERROR"},
		{"bad input", model.ErrInvalidInput, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tc.code, resp.Error.Code)
		})
	}
}

func TestWriteError_WrappedSentinelStillMaps(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("x"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	wrapped := errors.Join(errors.New("query recovery_entries"), model.ErrPersistence)
	writeError(rec, wrapped)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestParseIntOrDefault(t *testing.T) {
	assert.Equal(t, 1, parseIntOrDefault("", 1))
	assert.Equal(t, 7, parseIntOrDefault("7", 1))
	assert.Equal(t, 1, parseIntOrDefault("zero", 1))
	assert.Equal(t, 1, parseIntOrDefault("-4", 1))
}
