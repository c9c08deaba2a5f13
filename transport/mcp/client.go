package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/gridwalk/nav/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Grid Walk",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Grid Walk - MCP Interface

This is a thin client that proxies all requests to the REST API server.

TWO KINDS OF WALK:
- Turtle: starts at (0,0) facing north on an unbounded plane. Each instruction
  turns left or right and then walks forward, e.g. "R2, L3". Distances are
  Manhattan distances from the origin.
- Keypad: starts on a button of a keypad layout. Each line of U/D/L/R moves
  one button at a time; moves off the keypad are ignored. The button under
  the finger at the end of each line is pressed.

AVAILABLE TOOLS:
- turtle_walk: Walk a full turn list; returns final distance and first revisit
- keypad_code: Walk keypad lines over a layout and return the code
- list_keypads: List keypad layouts
- create_session: Start a turtle or keypad session
- apply_instruction: Feed one instruction to a session
- get_session: Show a session's position and progress
- list_sessions: List active sessions
- delete_session: Remove a session`),
	)

	c.registerTools()
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// One-shot solves
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "turtle_walk",
		Description: "Walk a comma-separated turn list such as 'R2, L3' from the origin facing north",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"instructions": stringProp("Comma-separated turns, each L or R followed by a distance"),
			},
			Required: []string{"instructions"},
		},
	}, c.handleTurtleWalk)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "keypad_code",
		Description: "Walk U/D/L/R lines over a keypad layout and return the pressed code",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"keypad": stringProp("Keypad layout ID (optional, defaults to the standard 3x3 keypad)"),
				"lines": map[string]interface{}{
					"type":        "array",
					"description": "One string of U/D/L/R characters per button press",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"lines"},
		},
	}, c.handleKeypadCode)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_keypads",
		Description: "List available keypad layouts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListKeypads)

	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new walk session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"kind":   stringProp("'turtle' (default) or 'keypad'"),
				"keypad": stringProp("Keypad layout ID for keypad sessions (optional)"),
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active walk sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get position and progress of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": stringProp("Session ID to retrieve"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "apply_instruction",
		Description: "Apply one instruction: a turn like 'R4' for turtle sessions, a line like 'ULL' or 'up, left' for keypad sessions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id":  stringProp("Session ID"),
				"instruction": stringProp("Instruction to apply"),
			},
			Required: []string{"session_id", "instruction"},
		},
	}, c.handleApplyInstruction)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_session",
		Description: "Delete a walk session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": stringProp("Session ID to delete"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleDeleteSession)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// Tool handlers

func (c *Client) handleTurtleWalk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions, _ := arguments(request)["instructions"].(string)

	var result service.TurtleResult
	err := c.apiCall(ctx, "POST", "/api/turtle/walk", map[string]string{"instructions": instructions}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatTurtleResult(&result)), nil
}

func (c *Client) handleKeypadCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	keypad, _ := args["keypad"].(string)
	if keypad == "" {
		keypad = "standard"
	}

	var lines []string
	switch raw := args["lines"].(type) {
	case []interface{}:
		for _, line := range raw {
			if s, ok := line.(string); ok {
				lines = append(lines, s)
			}
		}
	case string:
		lines = strings.Split(raw, "\n")
	}
	if len(lines) == 0 {
		return mcp.NewToolResultError("lines must contain at least one line of U/D/L/R"), nil
	}

	var result service.KeypadResult
	path := fmt.Sprintf("/api/keypads/%s/code", url.PathEscape(keypad))
	if err := c.apiCall(ctx, "POST", path, map[string][]string{"lines": lines}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatKeypadResult(&result)), nil
}

func (c *Client) handleListKeypads(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var keypads []service.KeypadInfo
	if err := c.apiCall(ctx, "GET", "/api/keypads", nil, &keypads); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatKeypadList(keypads)), nil
}

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	kind, _ := args["kind"].(string)
	keypad, _ := args["keypad"].(string)

	body := map[string]string{}
	if kind != "" {
		body["kind"] = kind
	}
	if keypad != "" {
		body["keypad"] = keypad
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\n%s", session.ID, formatSessionInfo(&session))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		kind := string(s.Kind)
		if s.Keypad != "" {
			kind += ":" + s.Keypad
		}
		fmt.Fprintf(&b, "- %s (%s, at %s, Created: %s)\n",
			s.ID, kind, s.Position, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+url.PathEscape(sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleApplyInstruction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	instruction, _ := args["instruction"].(string)

	var result service.ApplyResult
	path := fmt.Sprintf("/api/sessions/%s/apply", url.PathEscape(sessionID))
	if err := c.apiCall(ctx, "POST", path, map[string]string{"instruction": instruction}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatApplyResult(&result)), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	if err := c.apiCall(ctx, "DELETE", "/api/sessions/"+url.PathEscape(sessionID), nil, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted session %s", sessionID)), nil
}

// Formatting helpers

func formatTurtleResult(result *service.TurtleResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Instructions: %d (%d steps)\n", result.Instructions, result.Steps)
	fmt.Fprintf(&b, "Final position: %s facing %s\n", result.Final.Position, result.Final.Heading)
	fmt.Fprintf(&b, "Distance from origin: %d\n", result.Distance)
	if result.FirstRevisit != nil && result.RevisitDistance != nil {
		fmt.Fprintf(&b, "First revisited: %s (distance %d)\n", *result.FirstRevisit, *result.RevisitDistance)
	} else {
		b.WriteString("First revisited: none\n")
	}
	return b.String()
}

func formatKeypadResult(result *service.KeypadResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Keypad: %s\nCode: %s\n\n", result.Keypad, result.Code)
	for _, press := range result.Presses {
		fmt.Fprintf(&b, "%d. %s -> %s %s\n", press.Index, press.Instruction, press.Label, press.Position)
	}
	return b.String()
}

func formatKeypadList(keypads []service.KeypadInfo) string {
	var b strings.Builder
	b.WriteString("Available Keypads:\n\n")
	for _, k := range keypads {
		source := k.Filename
		if k.Builtin {
			source = "built-in"
		}
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Buttons: %d, Start: %s\n", k.KeypadID, source, k.Description, k.Buttons, k.Start)
		for _, row := range k.Layout {
			fmt.Fprintf(&b, "    %s\n", row)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nKind: %s\n", session.ID, session.Kind)
	if session.Keypad != "" {
		fmt.Fprintf(&b, "Keypad: %s\n", session.Keypad)
	}
	fmt.Fprintf(&b, "Position: %s\n", session.Position)
	if session.Heading != nil {
		fmt.Fprintf(&b, "Heading: %s\n", *session.Heading)
	}
	if session.Label != "" {
		fmt.Fprintf(&b, "Button: %s\n", session.Label)
	}
	if session.Code != "" {
		fmt.Fprintf(&b, "Code so far: %s\n", session.Code)
	}
	fmt.Fprintf(&b, "Instructions: %d, Steps: %d, Distance: %d\n", session.Instructions, session.Steps, session.Distance)
	if session.FirstRevisit != nil && session.RevisitDistance != nil {
		fmt.Fprintf(&b, "First revisited: %s (distance %d)\n", *session.FirstRevisit, *session.RevisitDistance)
	}
	return b.String()
}

func formatApplyResult(result *service.ApplyResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Applied %s: %s -> %s\n", result.Instruction, result.From, result.To)
	if result.Heading != nil {
		fmt.Fprintf(&b, "Now facing %s\n", *result.Heading)
	}
	if result.Label != "" {
		fmt.Fprintf(&b, "Pressed %s\n", result.Label)
	}
	if result.Absorbed > 0 {
		fmt.Fprintf(&b, "Ignored %d move(s) off the keypad\n", result.Absorbed)
	}
	if result.Session != nil {
		b.WriteString("\n")
		b.WriteString(formatSessionInfo(result.Session))
	}
	return b.String()
}
