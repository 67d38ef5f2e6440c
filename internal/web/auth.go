// SPDX-License-Identifier: MIT

package web

import (
	"crypto/subtle"
	"net/http"

	"github.com/wyniki-tenis/overlayd/internal/log"
)

// authRealm is presented in the WWW-Authenticate challenge.
const authRealm = `Basic realm="Overlay Config"`

// requireAdmin gates the configuration pages behind HTTP Basic auth against
// the configured credential pair. Access is denied when no credentials are
// configured (fail closed). The check is stateless and runs per request.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.WithComponentFromContext(r.Context(), "auth")

		if !s.cfg.AuthConfigured() {
			logger.Error().
				Str(log.FieldEvent, "auth.fail_closed").
				Msg("admin credentials not configured, denying access")
			unauthorized(w)
			return
		}

		user, pass, ok := r.BasicAuth()
		if !ok {
			logger.Warn().
				Str(log.FieldEvent, "auth.missing_credentials").
				Str(log.FieldPath, r.URL.Path).
				Msg("authorization header missing")
			unauthorized(w)
			return
		}

		// Constant-time comparison to prevent timing attacks.
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.cfg.AdminUser)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(s.cfg.AdminPass)) == 1
		if !userOK || !passOK {
			logger.Warn().
				Str(log.FieldEvent, "auth.invalid_credentials").
				Str(log.FieldPath, r.URL.Path).
				Msg("invalid admin credentials")
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", authRealm)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
