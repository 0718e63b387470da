package gateway

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/asjidimtiaz/leadqual/internal/domain"
	"github.com/asjidimtiaz/leadqual/internal/engine"
	"github.com/asjidimtiaz/leadqual/internal/hooks"
)

// chatTimeout bounds one full chat turn, including the completion call.
const chatTimeout = 2 * time.Minute

// registerRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/chat/start", s.handleChatStart)
	mux.HandleFunc("POST /api/chat/message", s.handleChatMessage)
	mux.HandleFunc("POST /api/quote", s.handleQuote)
	mux.HandleFunc("GET /api/leads", s.handleLeads)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	// Catch-all for unknown routes
	mux.HandleFunc("/", handleNotFound)
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: s.version})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

// StartResponse is returned by POST /api/chat/start.
type StartResponse struct {
	SessionID string      `json:"sessionId"`
	Mode      domain.Mode `json:"mode"`
}

func (s *Server) handleChatStart(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.StartSession(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("session start failed")
		writeError(w, http.StatusInternalServerError, "could not start session")
		return
	}
	writeJSON(w, http.StatusOK, StartResponse{SessionID: sess.ID, Mode: sess.Mode})
}

// MessageRequest is the body of POST /api/chat/message.
type MessageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), chatTimeout)
	defer cancel()

	res, err := s.manager.ProcessMessage(ctx, req.SessionID, req.Message)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
		return
	case errors.Is(err, engine.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "message is required")
		return
	case err != nil:
		s.log.Error().Err(err).Str("sessionId", req.SessionID).Msg("message processing failed")
		writeError(w, http.StatusInternalServerError, "could not process message")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// QuoteResponse is returned by POST /api/quote.
type QuoteResponse struct {
	LeadID string      `json:"leadId"`
	Score  int         `json:"score"`
	Tier   domain.Tier `json:"tier"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req engine.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	lead, err := engine.BuildQuoteLead(req, s.rules.ScoreQuote(req))
	if errors.Is(err, engine.ErrInvalidQuote) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not build lead")
		return
	}

	if s.crm == nil {
		writeError(w, http.StatusServiceUnavailable, "lead delivery is not configured")
		return
	}
	if err := s.crm.Create(r.Context(), lead); err != nil {
		s.log.Error().Err(err).Str("leadId", lead.ID).Msg("quote lead creation failed")
		writeError(w, http.StatusInternalServerError, "could not create lead")
		return
	}

	s.log.Info().Str("leadId", lead.ID).Int("score", lead.Score).Str("tier", string(lead.Tier)).Msg("quote lead created")
	if s.hooks != nil {
		s.hooks.Emit(r.Context(), hooks.EventLeadCreated, map[string]any{
			"leadId": lead.ID,
			"score":  lead.Score,
			"source": lead.Source,
		})
	}

	writeJSON(w, http.StatusOK, QuoteResponse{LeadID: lead.ID, Score: lead.Score, Tier: lead.Tier})
}

// LeadsResponse is returned by GET /api/leads.
type LeadsResponse struct {
	Leads []domain.Lead `json:"leads"`
}

func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if s.leads == nil {
		writeError(w, http.StatusServiceUnavailable, "lead storage is not configured")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be 1-500")
			return
		}
		limit = n
	}

	leads, err := s.leads.List(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("listing leads failed")
		writeError(w, http.StatusInternalServerError, "could not list leads")
		return
	}
	if leads == nil {
		leads = []domain.Lead{}
	}
	writeJSON(w, http.StatusOK, LeadsResponse{Leads: leads})
}

// authorized checks the bearer token for the leads API. An empty configured
// token disables the endpoint rather than opening it.
func (s *Server) authorized(r *http.Request) bool {
	token := s.cfg.Server.APIToken
	if token == "" {
		return false
	}
	auth := r.Header.Get("Authorization")
	got, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
