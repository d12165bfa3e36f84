package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/inkwellapp/inkwell/internal/common"
	"github.com/inkwellapp/inkwell/internal/server/auth"
)

type identityHandler func(w http.ResponseWriter, r *http.Request, ident *auth.Identity)

// withIdentity resolves the session cookie and hands the Identity to the
// wrapped handler as an argument. No identity ever rides in the request
// context; what a handler needs, it receives.
func (s *Server) withIdentity(next identityHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required", 0)
			return
		}

		ident, err := s.sessions.Resolve(r.Context(), cookie.Value)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrSessionExpired):
				s.setSessionCookie(w, "", -time.Second)
				writeError(w, http.StatusUnauthorized, "session expired", 0)
			case errors.Is(err, common.ErrorUnauthorized):
				writeError(w, http.StatusUnauthorized, "authentication required", 0)
			default:
				s.logger.Error(r.Context(), "session resolve failed", "error", err)
				writeError(w, http.StatusInternalServerError, "internal error", 0)
			}
			return
		}

		next(w, r, ident)
	}
}
