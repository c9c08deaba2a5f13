package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/wricardo/mcp-training/gridwalk/nav/config"
	"github.com/wricardo/mcp-training/gridwalk/nav/engine"
	"github.com/wricardo/mcp-training/gridwalk/nav/input"
	"github.com/wricardo/mcp-training/gridwalk/nav/service"
	"github.com/wricardo/mcp-training/gridwalk/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.NavService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil.
func NewServer(navService service.NavService, hub *websocket.Hub) *Server {
	s := &Server{
		service: navService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// One-shot solves
	api.HandleFunc("/turtle/walk", s.handleTurtleWalk).Methods("POST")
	api.HandleFunc("/keypads/{name}/code", s.handleKeypadCode).Methods("POST")

	// Keypad layouts
	api.HandleFunc("/keypads", s.handleListKeypads).Methods("GET")
	api.HandleFunc("/keypads", s.handleSaveKeypad).Methods("POST")
	api.HandleFunc("/keypads/{name}", s.handleGetKeypad).Methods("GET")

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/apply", s.handleApply).Methods("POST")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors onto HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrKeypadNotFound):
		status = http.StatusNotFound
	case errors.Is(err, input.ErrInvalidInstruction),
		errors.Is(err, service.ErrWalkTooLong),
		errors.Is(err, service.ErrUnknownKind),
		errors.Is(err, config.ErrInvalidConfig):
		status = http.StatusBadRequest
	}
	respondError(w, status, err.Error())
}

// instructionsRequest accepts either a single instruction string or a list of lines
type instructionsRequest struct {
	Instructions string   `json:"instructions"`
	Lines        []string `json:"lines,omitempty"`
}

func (req instructionsRequest) text(sep string) string {
	if len(req.Lines) > 0 {
		return strings.Join(req.Lines, sep)
	}
	return req.Instructions
}

// Solve Handlers

func (s *Server) handleTurtleWalk(w http.ResponseWriter, r *http.Request) {
	var req instructionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.WalkTurtle(r.Context(), req.text(", "))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[TURTLE] instructions=%d steps=%d final=%v distance=%d",
		result.Instructions, result.Steps, result.Final.Position, result.Distance)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleKeypadCode(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	var req instructionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.KeypadCode(r.Context(), name, req.text("\n"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[KEYPAD] keypad=%s lines=%d code=%s", result.Keypad, len(result.Presses), result.Code)

	respondJSON(w, http.StatusOK, result)
}

// Keypad Handlers

func (s *Server) handleListKeypads(w http.ResponseWriter, r *http.Request) {
	keypads, err := s.service.ListKeypads(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, keypads)
}

func (s *Server) handleGetKeypad(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	keypad, err := s.service.GetKeypad(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, keypad)
}

func (s *Server) handleSaveKeypad(w http.ResponseWriter, r *http.Request) {
	var keypadConfig engine.KeypadConfig
	if err := json.NewDecoder(r.Body).Decode(&keypadConfig); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if keypadConfig.Name == "" {
		respondError(w, http.StatusBadRequest, "Keypad name is required")
		return
	}

	if err := s.service.SaveKeypad(r.Context(), keypadConfig.Name, &keypadConfig); err != nil {
		if errors.Is(err, config.ErrInvalidConfig) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save keypad: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Keypad saved successfully",
		"keypad_id": keypadConfig.Name,
	})
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind   service.SessionKind `json:"kind,omitempty"`
		Keypad string              `json:"keypad,omitempty"`
	}

	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	session, err := s.service.CreateSession(r.Context(), req.Kind, req.Keypad)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(session.ID, websocket.EventCreated, session)
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	kind := query.Get("kind")      // optional filter
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	if kind != "" {
		filtered := sessions[:0]
		for _, session := range sessions {
			if string(session.Kind) == kind {
				filtered = append(filtered, session)
			}
		}
		sessions = filtered
	}
	total := len(sessions)

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, websocket.EventDeleted, nil)
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Instruction string `json:"instruction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Instruction) == "" {
		respondError(w, http.StatusBadRequest, "instruction is required")
		return
	}

	result, err := s.service.Apply(r.Context(), sessionID, req.Instruction)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(result.SessionID, websocket.EventStep, result)
	}

	// Compact server log for observability
	log.Printf("[APPLY] session=%s %s %v->%v visited=%d absorbed=%d",
		sessionID, result.Instruction, result.From, result.To, len(result.Visited), result.Absorbed)

	respondJSON(w, http.StatusOK, result)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket streaming disabled", http.StatusServiceUnavailable)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	// Subscribe under the canonical ID so broadcasts from Apply reach this client
	s.hub.ServeWS(w, r, session.ID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
