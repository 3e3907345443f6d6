package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"onepager/internal/auth"
	"onepager/internal/domain/models/onepager"
	"onepager/internal/httputil"
)

// GuestHeader carries the client-generated id of an anonymous session.
const GuestHeader = "X-Guest-ID"

// AuthMiddleware resolves the request principal. A Bearer token must verify;
// it never falls back to guest mode. Without a token the request runs as
// the guest named by GuestHeader, and requests with neither are rejected.
// A nil verifier accepts guests only.
func AuthMiddleware(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if header := r.Header.Get("Authorization"); header != "" {
				token, ok := strings.CutPrefix(header, "Bearer ")
				if !ok || token == "" {
					httputil.RespondError(w, http.StatusUnauthorized, "malformed authorization header")
					return
				}
				if verifier == nil {
					httputil.RespondError(w, http.StatusUnauthorized, "authentication is not configured")
					return
				}

				claims, err := verifier.VerifyToken(token)
				if err != nil {
					logger.Debug("bearer token rejected", "path", r.URL.Path, "error", err)
					httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
					return
				}

				next.ServeHTTP(w, httputil.WithPrincipal(r, onepager.Principal{UserID: claims.GetUserID()}))
				return
			}

			guestID := strings.TrimSpace(r.Header.Get(GuestHeader))
			if guestID == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing credentials")
				return
			}
			if _, err := uuid.Parse(guestID); err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "guest id must be a UUID")
				return
			}

			next.ServeHTTP(w, httputil.WithPrincipal(r, onepager.Principal{GuestID: guestID}))
		})
	}
}
