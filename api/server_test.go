package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/gridwalk/nav/config"
	"github.com/wricardo/mcp-training/gridwalk/nav/engine"
	"github.com/wricardo/mcp-training/gridwalk/nav/input"
	"github.com/wricardo/mcp-training/gridwalk/nav/service"
	"github.com/wricardo/mcp-training/gridwalk/nav/session"
	"github.com/wricardo/mcp-training/gridwalk/transport/websocket"
)

// MockNavService implements service.NavService for testing
type MockNavService struct {
	WalkTurtleFunc func(ctx context.Context, instructions string) (*service.TurtleResult, error)
	KeypadCodeFunc func(ctx context.Context, keypadName, instructions string) (*service.KeypadResult, error)

	CreateSessionFunc func(ctx context.Context, kind service.SessionKind, keypadName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	ApplyFunc func(ctx context.Context, sessionID, instruction string) (*service.ApplyResult, error)

	ListKeypadsFunc func(ctx context.Context) ([]*service.KeypadInfo, error)
	GetKeypadFunc   func(ctx context.Context, name string) (*service.KeypadInfo, error)
	SaveKeypadFunc  func(ctx context.Context, name string, config *engine.KeypadConfig) error
}

func (m *MockNavService) WalkTurtle(ctx context.Context, instructions string) (*service.TurtleResult, error) {
	if m.WalkTurtleFunc != nil {
		return m.WalkTurtleFunc(ctx, instructions)
	}
	return &service.TurtleResult{}, nil
}

func (m *MockNavService) KeypadCode(ctx context.Context, keypadName, instructions string) (*service.KeypadResult, error) {
	if m.KeypadCodeFunc != nil {
		return m.KeypadCodeFunc(ctx, keypadName, instructions)
	}
	return &service.KeypadResult{Keypad: keypadName}, nil
}

func (m *MockNavService) CreateSession(ctx context.Context, kind service.SessionKind, keypadName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, kind, keypadName)
	}
	return &service.SessionInfo{ID: "test-session", Kind: kind, CreatedAt: time.Now()}, nil
}

func (m *MockNavService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, Kind: service.KindTurtle, CreatedAt: time.Now()}, nil
}

func (m *MockNavService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockNavService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockNavService) Apply(ctx context.Context, sessionID, instruction string) (*service.ApplyResult, error) {
	if m.ApplyFunc != nil {
		return m.ApplyFunc(ctx, sessionID, instruction)
	}
	return &service.ApplyResult{SessionID: sessionID, Instruction: instruction}, nil
}

func (m *MockNavService) ListKeypads(ctx context.Context) ([]*service.KeypadInfo, error) {
	if m.ListKeypadsFunc != nil {
		return m.ListKeypadsFunc(ctx)
	}
	return []*service.KeypadInfo{}, nil
}

func (m *MockNavService) GetKeypad(ctx context.Context, name string) (*service.KeypadInfo, error) {
	if m.GetKeypadFunc != nil {
		return m.GetKeypadFunc(ctx, name)
	}
	return &service.KeypadInfo{KeypadID: name, Name: name}, nil
}

func (m *MockNavService) SaveKeypad(ctx context.Context, name string, config *engine.KeypadConfig) error {
	if m.SaveKeypadFunc != nil {
		return m.SaveKeypadFunc(ctx, name, config)
	}
	return nil
}

// Test helpers
func setupTestServer(mockService *MockNavService) *Server {
	return NewServer(mockService, nil)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func TestTurtleWalk(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockNavService)
		expectedStatus int
	}{
		{
			name:        "instruction string",
			requestBody: map[string]string{"instructions": "R2, L3"},
			setupMock: func(m *MockNavService) {
				m.WalkTurtleFunc = func(ctx context.Context, instructions string) (*service.TurtleResult, error) {
					if instructions != "R2, L3" {
						t.Errorf("unexpected instructions %q", instructions)
					}
					return &service.TurtleResult{Distance: 5}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "instruction lines are joined",
			requestBody: map[string][]string{"lines": {"R2", "L3"}},
			setupMock: func(m *MockNavService) {
				m.WalkTurtleFunc = func(ctx context.Context, instructions string) (*service.TurtleResult, error) {
					if instructions != "R2, L3" {
						t.Errorf("unexpected instructions %q", instructions)
					}
					return &service.TurtleResult{Distance: 5}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "parse error is a bad request",
			requestBody: map[string]string{"instructions": "X2"},
			setupMock: func(m *MockNavService) {
				m.WalkTurtleFunc = func(ctx context.Context, instructions string) (*service.TurtleResult, error) {
					return nil, fmt.Errorf("instruction 1: %w", input.ErrInvalidInstruction)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "walk too long is a bad request",
			requestBody: map[string]string{"instructions": "R99999999"},
			setupMock: func(m *MockNavService) {
				m.WalkTurtleFunc = func(ctx context.Context, instructions string) (*service.TurtleResult, error) {
					return nil, service.ErrWalkTooLong
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockNavService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/turtle/walk", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}

	t.Run("invalid body", func(t *testing.T) {
		server := setupTestServer(&MockNavService{})
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/turtle/walk", strings.NewReader("{"))
		server.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestKeypadCode(t *testing.T) {
	mockService := &MockNavService{
		KeypadCodeFunc: func(ctx context.Context, keypadName, instructions string) (*service.KeypadResult, error) {
			if keypadName == "rotary" {
				return nil, fmt.Errorf("keypad 'rotary': %w", service.ErrKeypadNotFound)
			}
			if instructions != "ULL\nRRDDD" {
				t.Errorf("unexpected instructions %q", instructions)
			}
			return &service.KeypadResult{Keypad: keypadName, Code: "19"}, nil
		},
	}
	server := setupTestServer(mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/keypads/standard.json/code", map[string][]string{"lines": {"ULL", "RRDDD"}}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp service.KeypadResult
	parseResponse(t, w, &resp)
	if resp.Keypad != "standard" || resp.Code != "19" {
		t.Errorf("unexpected response %+v", resp)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/keypads/rotary/code", map[string]string{"instructions": "U"}))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestKeypads(t *testing.T) {
	var saved *engine.KeypadConfig
	mockService := &MockNavService{
		ListKeypadsFunc: func(ctx context.Context) ([]*service.KeypadInfo, error) {
			return []*service.KeypadInfo{
				{KeypadID: "diamond", Buttons: 13, Builtin: true},
				{KeypadID: "standard", Buttons: 9, Builtin: true},
			}, nil
		},
		GetKeypadFunc: func(ctx context.Context, name string) (*service.KeypadInfo, error) {
			if name != "diamond" {
				return nil, service.ErrKeypadNotFound
			}
			return &service.KeypadInfo{KeypadID: name, Start: "5"}, nil
		},
		SaveKeypadFunc: func(ctx context.Context, name string, cfg *engine.KeypadConfig) error {
			if len(cfg.Layout) == 0 {
				return fmt.Errorf("%w: layout must have at least one row", config.ErrInvalidConfig)
			}
			saved = cfg
			return nil
		},
	}
	server := setupTestServer(mockService)

	t.Run("list", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/keypads", nil))
		var resp []service.KeypadInfo
		parseResponse(t, w, &resp)
		if len(resp) != 2 || resp[0].KeypadID != "diamond" {
			t.Errorf("unexpected list %+v", resp)
		}
	})

	t.Run("get", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/keypads/diamond", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		w = httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/keypads/missing", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("save", func(t *testing.T) {
		body := engine.KeypadConfig{Name: "line", Layout: []string{"ABC"}, Start: "B"}
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/keypads", body))
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d", w.Code)
		}
		if saved == nil || saved.Start != "B" {
			t.Errorf("keypad not passed to service: %+v", saved)
		}
	})

	t.Run("save without name", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/keypads", engine.KeypadConfig{Layout: []string{"A"}, Start: "A"}))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("save invalid layout", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/keypads", engine.KeypadConfig{Name: "empty", Start: "A"}))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]string
		expectedStatus int
		expectedKind   service.SessionKind
		expectedKeypad string
	}{
		{name: "default kind", requestBody: nil, expectedStatus: http.StatusCreated},
		{name: "keypad session", requestBody: map[string]string{"kind": "keypad", "keypad": "diamond"}, expectedStatus: http.StatusCreated, expectedKind: service.KindKeypad, expectedKeypad: "diamond"},
		{name: "unknown kind", requestBody: map[string]string{"kind": "spiral"}, expectedStatus: http.StatusBadRequest, expectedKind: "spiral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockNavService{
				CreateSessionFunc: func(ctx context.Context, kind service.SessionKind, keypadName string) (*service.SessionInfo, error) {
					if kind != tt.expectedKind || keypadName != tt.expectedKeypad {
						t.Errorf("got kind=%q keypad=%q", kind, keypadName)
					}
					if kind == "spiral" {
						return nil, service.ErrUnknownKind
					}
					return &service.SessionInfo{ID: "ab12", Kind: kind, Keypad: keypadName}, nil
				},
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mockService := &MockNavService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", Kind: service.KindTurtle, CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Hour)},
				{ID: "new", Kind: service.KindKeypad, CreatedAt: now.Add(-time.Hour), LastAccessedAt: now},
				{ID: "mid", Kind: service.KindTurtle, CreatedAt: now.Add(-90 * time.Minute), LastAccessedAt: now.Add(-30 * time.Minute)},
			}, nil
		},
	}
	server := setupTestServer(mockService)

	type listResponse struct {
		Count    int                    `json:"count"`
		Total    int                    `json:"total"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}

	tests := []struct {
		query string
		count int
		total int
		first string
	}{
		{query: "", count: 3, total: 3, first: "new"},
		{query: "?order=asc", count: 3, total: 3, first: "old"},
		{query: "?sort=created&limit=1", count: 1, total: 3, first: "new"},
		{query: "?kind=turtle", count: 2, total: 2, first: "mid"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions"+tt.query, nil))

			var resp listResponse
			parseResponse(t, w, &resp)
			if resp.Count != tt.count || resp.Total != tt.total {
				t.Errorf("count=%d total=%d, want %d/%d", resp.Count, resp.Total, tt.count, tt.total)
			}
			if len(resp.Sessions) == 0 || resp.Sessions[0].ID != tt.first {
				t.Errorf("first session mismatch, want %s", tt.first)
			}
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mockService := &MockNavService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "ab12" {
				return nil, fmt.Errorf("session %s: %w", sessionID, service.ErrSessionNotFound)
			}
			return &service.SessionInfo{ID: sessionID}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "ab12" {
				return fmt.Errorf("session %s: %w", sessionID, service.ErrSessionNotFound)
			}
			return nil
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/api/sessions/ab12", http.StatusOK},
		{"GET", "/api/sessions/zzzz", http.StatusNotFound},
		{"DELETE", "/api/sessions/ab12", http.StatusOK},
		{"DELETE", "/api/sessions/zzzz", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest(tt.method, tt.path, nil))
			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestApply(t *testing.T) {
	mockService := &MockNavService{
		ApplyFunc: func(ctx context.Context, sessionID, instruction string) (*service.ApplyResult, error) {
			if instruction == "bogus" {
				return nil, fmt.Errorf("%w: bogus", input.ErrInvalidInstruction)
			}
			return &service.ApplyResult{
				SessionID:   sessionID,
				Instruction: instruction,
				To:          engine.Coordinate{X: 0, Y: 4},
			}, nil
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{name: "turn", body: map[string]string{"instruction": "L4"}, status: http.StatusOK},
		{name: "missing instruction", body: map[string]string{}, status: http.StatusBadRequest},
		{name: "invalid instruction", body: map[string]string{"instruction": "bogus"}, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/apply", tt.body))
			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
		})
	}
}

func TestHealth(t *testing.T) {
	server := setupTestServer(&MockNavService{})
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/health", nil))

	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("unexpected health response %v", resp)
	}
}

func TestWebSocketRejections(t *testing.T) {
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	mockService := &MockNavService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return nil, service.ErrSessionNotFound
		},
	}
	server := NewServer(mockService, hub)

	tests := []struct {
		query  string
		status int
	}{
		{query: "", status: http.StatusBadRequest},
		{query: "?session=invalid", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, httptest.NewRequest("GET", "/ws"+tt.query, nil))
		if w.Code != tt.status {
			t.Errorf("%q: expected status %d, got %d", tt.query, tt.status, w.Code)
		}
	}

	w := httptest.NewRecorder()
	setupTestServer(&MockNavService{}).ServeHTTP(w, httptest.NewRequest("GET", "/ws?session=ab12", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without hub, got %d", w.Code)
	}
}

// TestSessionStreaming drives a real service end to end: a websocket client
// subscribed to a keypad session receives every applied step.
func TestSessionStreaming(t *testing.T) {
	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("config manager: %v", err)
	}
	navService := service.NewNavService(session.NewManager(), configs)

	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	ts := httptest.NewServer(NewServer(navService, hub))
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/sessions", "application/json",
		strings.NewReader(`{"kind":"keypad","keypad":"diamond"}`))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	var info service.SessionInfo
	json.NewDecoder(resp.Body).Decode(&info)
	resp.Body.Close()
	if info.Label != "5" {
		t.Fatalf("expected session on 5, got %+v", info)
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=" + info.ID
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount(info.ID) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	resp, err = http.Post(ts.URL+"/api/sessions/"+info.ID+"/apply", "application/json",
		strings.NewReader(`{"instruction":"RRDDD"}`))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("apply status %d", resp.StatusCode)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var message struct {
		Event string              `json:"event"`
		Data  service.ApplyResult `json:"data"`
	}
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if message.Event != websocket.EventStep {
		t.Errorf("event = %s, want %s", message.Event, websocket.EventStep)
	}
	if message.Data.Label != "D" || message.Data.Absorbed != 1 {
		t.Errorf("unexpected step %+v", message.Data)
	}
}
