package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/openstudio/register-gateway/pkg/logger"
)

const sessionHeader = "X-Register-Session"

// Session resolves the register session identifier from the request header,
// minting a fresh one when the client has none yet. The identifier is echoed
// back so the door station can persist it.
func Session(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get(sessionHeader)
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			w.Header().Set(sessionHeader, sessionID)

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
