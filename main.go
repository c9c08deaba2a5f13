// Command gridwalk starts the Grid Walk server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, config directory, debug logging, version output,
// and optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/gridwalk/api"
	"github.com/wricardo/mcp-training/gridwalk/nav/config"
	"github.com/wricardo/mcp-training/gridwalk/nav/service"
	"github.com/wricardo/mcp-training/gridwalk/nav/session"
	"github.com/wricardo/mcp-training/gridwalk/transport/mcp"
	"github.com/wricardo/mcp-training/gridwalk/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Grid Walk Server"
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	configDir    = flag.String("config-dir", getConfigDirDefault(), "Directory containing keypad layouts")
	sessionTTL   = flag.Duration("session-ttl", 24*time.Hour, "Remove sessions idle for longer than this")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// getConfigDirDefault returns the default configuration directory.
// It first honors the CONFIG_DIR environment variable, then falls back to "configs".
func getConfigDirDefault() string {
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		return configDir
	}
	return "configs"
}

func init() {
	flag.Usage = func() {
		name := os.Args[0]
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [server|stdio-mcp]\n\n", name)
		fmt.Fprintf(os.Stderr, "Modes:\n")
		fmt.Fprintf(os.Stderr, "  server (http)          REST API, /ws step stream and /mcp endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp (mcp-stdio, mcp)\n")
		fmt.Fprintf(os.Stderr, "                         MCP over stdin/stdout, backed by a running server or an internal one\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -config-dir ./configs\n", name)
		fmt.Fprintf(os.Stderr, "  %s -port 9090 -session-ttl 2h\n", name)
		fmt.Fprintf(os.Stderr, "  %s mcp\n", name)
	}
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		// Only log if it's not a "file not found" error
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	flag.Parse()

	// Show version if requested
	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	// Setup logging
	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	// Determine mode from command
	args := flag.Args()
	mode := "server" // default
	if len(args) > 0 {
		mode = args[0]
	}

	log.Printf("Starting %s v%s (mode: %s)", AppName, Version, mode)

	// Initialize services
	navService, err := initializeServices()
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		// Run MCP stdio server with internal HTTP server
		runStdioMCPWithInternalServer(navService)
		return

	case "server", "http":
		// Run HTTP server with API, WebSocket, and MCP endpoint
		runHTTPServer(navService)

	default:
		log.Fatalf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled (via flag or environment), it also provisions a public tunnel.
func runHTTPServer(navService service.NavService) {
	// Create WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Setup HTTP server address
	addr := fmt.Sprintf("%s:%d", *host, *port)

	mainRouter := newRouter(navService, hub, fmt.Sprintf("http://%s", addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Setup graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	// Start regular HTTP server
	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if t, ok := tunnelSettings(os.Getenv); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveTunnel(ctx, t, mainRouter)
		}()
	}

	// Wait for shutdown signal
	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Wait for all goroutines to finish
	wg.Wait()
	log.Println("Server stopped")
}

// tunnel holds the resolved ngrok settings
type tunnel struct {
	authToken string
	domain    string
}

// tunnelSettings resolves ngrok settings from flags, then getenv. It reports
// false when the tunnel is disabled or has no auth token.
func tunnelSettings(getenv func(string) string) (tunnel, bool) {
	enabled := *ngrokEnabled
	if v := getenv("NGROK_ENABLED"); v == "true" || v == "1" {
		enabled = true
	}
	if !enabled {
		return tunnel{}, false
	}

	t := tunnel{authToken: *ngrokAuth, domain: *ngrokDomain}
	for _, key := range []string{"NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"} {
		if t.authToken == "" {
			t.authToken = getenv(key)
		}
	}
	if t.domain == "" {
		t.domain = getenv("NGROK_DOMAIN")
	}

	if t.authToken == "" {
		log.Println("WARNING: ngrok enabled without an auth token (use -ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return tunnel{}, false
	}
	return t, true
}

// serveTunnel exposes handler through ngrok until ctx is cancelled
func serveTunnel(ctx context.Context, t tunnel, handler http.Handler) {
	endpoint := ngrokConfig.HTTPEndpoint()
	if t.domain != "" {
		endpoint = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(t.domain))
	}

	log.Printf("[NGROK] Starting tunnel (domain: %q)", t.domain)
	listener, err := ngrok.Listen(ctx, endpoint, ngrok.WithAuthtoken(t.authToken))
	if err != nil {
		log.Printf("[NGROK] Failed to start tunnel: %v", err)
		return
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Printf("[NGROK] Failed to close tunnel: %v", err)
		}
	}()

	url := listener.URL()
	log.Printf("[NGROK] Tunnel established: %s (api %s/api, ws %s/ws?session=<id>, mcp %s/mcp)", url, url, url, url)

	if err := http.Serve(listener, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("[NGROK] Serve error: %v", err)
	}
	log.Println("[NGROK] Tunnel closed")
}

// newRouter mounts the REST API and WebSocket hub at the root and the MCP
// JSON-RPC endpoint at /mcp. The MCP tools call back into the API at baseURL.
func newRouter(navService service.NavService, hub *websocket.Hub, baseURL string) http.Handler {
	apiServer := api.NewServer(navService, hub)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// initializeServices wires session/config managers and the navigation service.
// It also starts a background cleanup routine to prune stale sessions.
func initializeServices() (service.NavService, error) {
	configManager, err := config.NewManager(*configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager()
	navService := service.NewNavService(sessionManager, configManager)

	// Start session cleanup routine
	go sessionCleanupRoutine(sessionManager, *sessionTTL)

	return navService, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the provided retention window.
func sessionCleanupRoutine(manager *session.Manager, maxAge time.Duration) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		removed := manager.CleanupExpiredSessions(maxAge)
		if removed > 0 {
			log.Printf("Cleaned up %d expired sessions", removed)
		}
	}
}

// runStdioMCPWithInternalServer runs an MCP stdio server. Tools call the API
// at -host:-port when one answers there, otherwise an internal API on a
// random loopback port.
func runStdioMCPWithInternalServer(navService service.NavService) {
	baseURL := fmt.Sprintf("http://%s:%d", *host, *port)

	if probeAPI(baseURL) {
		log.Printf("Using running API server at %s", baseURL)
	} else {
		log.Printf("No API server at %s, starting an internal one", baseURL)
		internalURL, stop, err := startInternalAPI(navService)
		if err != nil {
			log.Fatalf("Failed to start internal API server: %v", err)
		}
		defer stop()
		baseURL = internalURL
	}

	log.Printf("MCP stdio server ready (API at %s)", baseURL)
	if err := server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer()); err != nil {
		log.Fatalf("MCP stdio server error: %v", err)
	}
}

// probeAPI reports whether a gridwalk API answers its health check at baseURL
func probeAPI(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves the REST API on a random loopback port. The
// returned stop func shuts the server and its hub down.
func startInternalAPI(navService service.NavService) (string, func(), error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to listen: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	httpServer := &http.Server{Handler: api.NewServer(navService, hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Internal HTTP server error: %v", err)
		}
	}()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(ctx)
		hub.Stop()
	}
	return "http://" + listener.Addr().String(), stop, nil
}
