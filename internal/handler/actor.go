package handler

import (
	"net"
	"net/http"
	"strings"

	"go-item-recovery/internal/middleware"
)

// requestUserID resolves the user a request acts on. Players act on
// their own ledger; admins and game-server integrations may name any
// user via the user_id query parameter.
func requestUserID(r *http.Request) string {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return ""
	}

	if claims.Role == "admin" || claims.Role == "server" {
		if override := strings.TrimSpace(r.URL.Query().Get("user_id")); override != "" {
			return override
		}
	}

	return claims.UserID
}

func clientIP(r *http.Request) string {
	xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}

	xri := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		return host
	}

	return strings.TrimSpace(r.RemoteAddr)
}
