package gateway

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"tokencard/internal/domain"
	"tokencard/internal/refresh"
	"tokencard/internal/router"
)

// Server is the HTTP surface over the refresh engine.
type Server struct {
	engine   *refresh.Engine
	hub      *Hub
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a Server. The hub may be nil when WebSocket push is
// not wanted.
func NewServer(engine *refresh.Engine, hub *Hub, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		engine: engine,
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The gateway is same-origin only behind a proxy in production.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Routes registers all handlers on a new mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /cards", s.handleCreateCard)
	mux.HandleFunc("GET /cards", s.handleListCards)
	mux.HandleFunc("GET /cards/{id}", s.handleGetCard)
	mux.HandleFunc("POST /cards/{id}/refresh", s.handleRefreshCard)
	mux.HandleFunc("DELETE /cards/{id}", s.handleDeleteCard)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// CreateCardRequest is the POST /cards body.
type CreateCardRequest struct {
	// Text is free-form input to scan for an address or token name.
	Text string `json:"text"`
	// Intent is "market" (default) or "wallet".
	Intent string `json:"intent,omitempty"`
	// AutoRefresh starts the bounded auto-refresh loop for the new card.
	AutoRefresh bool `json:"auto_refresh,omitempty"`
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	intent := router.IntentMarket
	switch req.Intent {
	case "", string(router.IntentMarket):
	case string(router.IntentWallet):
		intent = router.IntentWallet
	default:
		writeError(w, http.StatusBadRequest, "intent must be market or wallet")
		return
	}

	card, err := s.engine.CreateCard(r.Context(), req.Text, intent)
	if err != nil {
		if errors.Is(err, refresh.ErrNoIdentifier) {
			writeError(w, http.StatusUnprocessableEntity, "no address or token name found in text")
			return
		}
		s.logger.Printf("[gateway] create card: %v", err)
		writeError(w, http.StatusInternalServerError, "create card failed")
		return
	}

	if req.AutoRefresh {
		if err := s.engine.StartAutoRefresh(card.ID); err != nil {
			s.logger.Printf("[gateway] start auto refresh %s: %v", card.ID, err)
		}
	}

	writeJSON(w, http.StatusCreated, card)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.engine.ListCards(r.Context())
	if err != nil {
		s.logger.Printf("[gateway] list cards: %v", err)
		writeError(w, http.StatusInternalServerError, "list cards failed")
		return
	}
	if cards == nil {
		cards = []*domain.Card{}
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.engine.GetCard(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, refresh.ErrCardNotFound) {
			writeError(w, http.StatusNotFound, "card not found")
			return
		}
		s.logger.Printf("[gateway] get card: %v", err)
		writeError(w, http.StatusInternalServerError, "get card failed")
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleRefreshCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.engine.Refresh(r.Context(), r.PathValue("id"), refresh.TriggerManual)
	if err != nil {
		if errors.Is(err, refresh.ErrCardNotFound) {
			writeError(w, http.StatusNotFound, "card not found")
			return
		}
		s.logger.Printf("[gateway] refresh card: %v", err)
		writeError(w, http.StatusInternalServerError, "refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.engine.CloseCard(r.Context(), id); err != nil {
		if errors.Is(err, refresh.ErrCardNotFound) {
			writeError(w, http.StatusNotFound, "card not found")
			return
		}
		s.logger.Printf("[gateway] delete card: %v", err)
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	if s.hub != nil {
		s.hub.BroadcastClosed(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeError(w, http.StatusNotImplemented, "websocket push disabled")
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("[gateway] ws upgrade: %v", err)
		return
	}
	s.hub.Serve(conn)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[gateway] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
