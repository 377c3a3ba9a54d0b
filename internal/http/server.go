// Package http expone el engine por HTTP para operación y pruebas.
//
// Es glue de ops, no el front end de autenticación: el flow engine real
// (render de pantallas, manejo de credenciales) vive fuera de este repo y
// consume el engine como librería.
package http

import (
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/gatejohn/internal/authn"
	"github.com/dropDatabas3/gatejohn/internal/engine"
	"github.com/dropDatabas3/gatejohn/internal/observability/logger"
	"github.com/dropDatabas3/gatejohn/internal/risk"
	"github.com/dropDatabas3/gatejohn/internal/ticket"
	"github.com/dropDatabas3/gatejohn/internal/ticket/registry"
)

type Server struct {
	eng *engine.Engine
}

// NewRouter arma el router chi con los endpoints de decisión y ops.
func NewRouter(eng *engine.Engine) chi.Router {
	s := &Server{eng: eng}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		w.WriteHeader(stdhttp.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/decide", s.handleDecide)
		r.Post("/tickets/service", s.handleGrantService)
		r.Post("/tickets/validate", s.handleValidateService)
		r.Post("/logout", s.handleLogout)
	})
	return r
}

type loginRequest struct {
	PrincipalID string              `json:"principal_id"`
	Attributes  map[string][]string `json:"attributes"`
	Credentials []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	} `json:"credentials"`
}

func (s *Server) handleLogin(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, stdhttp.StatusBadRequest, "invalid json")
		return
	}
	creds := make([]authn.CredentialMetadata, 0, len(req.Credentials))
	for _, c := range req.Credentials {
		creds = append(creds, authn.CredentialMetadata{ID: c.ID, Type: c.Type})
	}
	auth := authn.New(authn.Principal{ID: req.PrincipalID, Attributes: req.Attributes}, creds, nil)

	tgt, err := s.eng.Login(r.Context(), auth)
	if err != nil {
		if errors.Is(err, ticket.ErrInvalidArgument) {
			writeError(w, stdhttp.StatusBadRequest, "principal_id required")
			return
		}
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, stdhttp.StatusCreated, map[string]any{"tgt": tgt.ID()})
}

type attemptRequest struct {
	TGT       string   `json:"tgt"`
	ServiceID string   `json:"service_id"`
	IP        string   `json:"ip"`
	UserAgent string   `json:"user_agent"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (req attemptRequest) attempt() risk.Attempt {
	a := risk.Attempt{
		ServiceID: req.ServiceID,
		IP:        req.IP,
		UserAgent: req.UserAgent,
		At:        time.Now().UTC(),
	}
	if req.Latitude != nil && req.Longitude != nil {
		a.Latitude, a.Longitude, a.HasGeo = *req.Latitude, *req.Longitude, true
	}
	return a
}

func (s *Server) handleDecide(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var req attemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, stdhttp.StatusBadRequest, "invalid json")
		return
	}
	d, err := s.eng.Decide(r.Context(), req.TGT, req.attempt())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, stdhttp.StatusOK, d)
}

type grantRequest struct {
	TGT     string `json:"tgt"`
	Service string `json:"service"`
}

func (s *Server) handleGrantService(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, stdhttp.StatusBadRequest, "invalid json")
		return
	}
	st, err := s.eng.GrantService(r.Context(), req.TGT, req.Service)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrNotFound), errors.Is(err, ticket.ErrTicketExpired):
			writeError(w, stdhttp.StatusUnauthorized, "authentication required again")
		case errors.Is(err, ticket.ErrInvalidArgument):
			writeError(w, stdhttp.StatusBadRequest, "invalid request")
		default:
			s.internalError(w, r, err)
		}
		return
	}
	writeJSON(w, stdhttp.StatusCreated, map[string]any{"st": st.ID()})
}

type validateRequest struct {
	ST      string `json:"st"`
	Service string `json:"service"`
}

func (s *Server) handleValidateService(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, stdhttp.StatusBadRequest, "invalid json")
		return
	}
	auth, err := s.eng.ValidateService(r.Context(), req.ST, req.Service)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrNotFound), errors.Is(err, ticket.ErrTicketExpired):
			writeError(w, stdhttp.StatusUnauthorized, "authentication required again")
		case errors.Is(err, ticket.ErrInvalidArgument):
			writeError(w, stdhttp.StatusBadRequest, "invalid request")
		default:
			s.internalError(w, r, err)
		}
		return
	}
	writeJSON(w, stdhttp.StatusOK, map[string]any{
		"principal_id": auth.Principal.ID,
		"attributes":   auth.Principal.Attributes,
		"auth_time":    auth.AuthTime,
	})
}

type logoutRequest struct {
	TGT string `json:"tgt"`
}

func (s *Server) handleLogout(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var req logoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, stdhttp.StatusBadRequest, "invalid json")
		return
	}
	if err := s.eng.Logout(r.Context(), req.TGT); err != nil {
		s.internalError(w, r, err)
		return
	}
	w.WriteHeader(stdhttp.StatusNoContent)
}

func (s *Server) internalError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	logger.From(r.Context()).Named("http").Error("request failed", logger.Err(err))
	writeError(w, stdhttp.StatusInternalServerError, "internal error")
}

func writeJSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w stdhttp.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
