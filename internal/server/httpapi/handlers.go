package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/inkwellapp/inkwell/internal/common"
	"github.com/inkwellapp/inkwell/internal/protocol"
	"github.com/inkwellapp/inkwell/internal/server/auth"
	"github.com/inkwellapp/inkwell/internal/server/ratelimit"
)

const maxBodyBytes = 4 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req protocol.RegisterRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	_, err := s.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorLoginAlreadyExists) {
			writeError(w, http.StatusConflict, "email already registered", 0)
			return
		}
		s.logger.Error(r.Context(), "register failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", 0)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req protocol.LoginRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var blocked *ratelimit.BlockedError
		switch {
		case errors.As(err, &blocked):
			writeError(w, http.StatusTooManyRequests, "too many failed attempts",
				int64(blocked.RetryAfter.Round(time.Second).Seconds()))
		case errors.Is(err, common.ErrorUnauthorized):
			writeError(w, http.StatusUnauthorized, "invalid credentials", 0)
		default:
			s.logger.Error(r.Context(), "login failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error", 0)
		}
		return
	}

	session, err := s.sessions.Issue(r.Context(), user.ID)
	if err != nil {
		s.logger.Error(r.Context(), "session issue failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", 0)
		return
	}

	s.setSessionCookie(w, session.ID, s.sessionTTL)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, ident *auth.Identity) {
	if err := s.sessions.Revoke(r.Context(), ident.SessionID); err != nil {
		s.logger.Warn(r.Context(), "session revoke failed", "error", err)
	}
	s.setSessionCookie(w, "", -time.Second)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMutation(w http.ResponseWriter, r *http.Request, ident *auth.Identity) {
	var req protocol.MutationRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	resp, err := s.gateway.Mutate(r.Context(), ident, req.Name, req.Args)
	if err != nil {
		if errors.Is(err, common.ErrUnknownMutation) {
			// the set of mutations is closed; the client drops the op
			writeJSON(w, http.StatusOK, &protocol.MutationResponse{
				Status:  protocol.StatusInvalid,
				Message: "unknown mutation: " + req.Name,
			})
			return
		}
		s.logger.Error(r.Context(), "mutation failed", "name", req.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", 0)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request, ident *auth.Identity) {
	var req protocol.QueryRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.gateway.Query(r.Context(), ident, req.Name, req.Args)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUnknownQuery):
			writeError(w, http.StatusBadRequest, "unknown query: "+req.Name, 0)
		case errors.Is(err, common.ErrTransformFailed):
			writeError(w, http.StatusBadRequest, err.Error(), 0)
		case errors.Is(err, common.ErrorNotFound):
			writeError(w, http.StatusNotFound, "not found", 0)
		default:
			s.logger.Error(r.Context(), "query failed", "name", req.Name, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error", 0)
		}
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		s.logger.Error(r.Context(), "query result encode failed", "name", req.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", 0)
		return
	}
	writeJSON(w, http.StatusOK, &protocol.QueryResponse{Result: raw})
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", 0)
		return false
	}
	return true
}

func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, out any) bool {
	if !s.decodeBody(w, r, out) {
		return false
	}
	if err := s.validate.Struct(out); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), 0)
		return false
	}
	return true
}

func (s *Server) setSessionCookie(w http.ResponseWriter, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, retryAfterSeconds int64) {
	writeJSON(w, status, &protocol.ErrorResponse{
		Error:             message,
		RetryAfterSeconds: retryAfterSeconds,
	})
}
