// Package server serves a live preview of one Markdown file.
//
// GET / renders the file in preview mode and appends a small script that
// opens a websocket on /ws; Reload sends {"action":"reload"} to every
// connected page, which then reloads itself.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// ErrListen wraps bind failures.
var ErrListen = errors.New("failed to listen")

// ReloadScript is appended to preview pages. It does not reconnect, so a
// page left open across a server restart stops reloading.
const ReloadScript = `<script>
(function () {
  var proto = location.protocol === "https:" ? "wss:" : "ws:";
  var ws = new WebSocket(proto + "//" + location.host + "/ws");
  ws.onmessage = function (e) {
    try {
      if (JSON.parse(e.data).action === "reload") { location.reload(); }
    } catch (_) {}
  };
})();
</script>`

// RenderFunc returns the preview HTML for the source file.
type RenderFunc func(ctx context.Context, sourcePath string) (string, error)

type reloadMessage struct {
	Action string `json:"action"`
}

// client serializes writes: gorilla/websocket forbids concurrent writers.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// Server is the preview HTTP server.
type Server struct {
	source   string
	render   RenderFunc
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// New returns a server previewing source with render.
func New(source string, render RenderFunc, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		source:  source,
		render:  render,
		logger:  logger,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: sameOrigin,
		},
	}
}

// sameOrigin accepts requests without Origin (non-browser clients) and
// browser requests from the page the server itself served.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return strings.TrimPrefix(strings.TrimPrefix(origin, "http://"), "https://") == r.Host
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePreview)
	r.Get("/ws", s.handleWS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	page, err := s.render(r.Context(), s.source)
	if err != nil {
		s.logger.Error("preview failed", zap.String("source", s.source), zap.Error(err))
		http.Error(w, "preview failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(InjectReloadScript(page)))
}

// InjectReloadScript inserts ReloadScript before the last </body>, or
// appends it when the document has none.
func InjectReloadScript(page string) string {
	i := strings.LastIndex(strings.ToLower(page), "</body>")
	if i < 0 {
		return page + ReloadScript
	}
	return page[:i] + ReloadScript + "\n" + page[i:]
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn}
	s.register(c)
	defer s.unregister(c)

	// Pages never send; reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) register(c *client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	n := len(s.clients)
	s.mu.Unlock()
	s.logger.Debug("preview client connected", zap.Int("clients", n))
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if ok {
		_ = c.conn.Close()
	}
}

// Clients returns the number of connected pages.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Reload tells every connected page to reload and returns how many were
// notified. Clients that fail the write are dropped.
func (s *Server) Reload() int {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	sent := 0
	for _, c := range clients {
		if err := c.writeJSON(reloadMessage{Action: "reload"}); err != nil {
			s.logger.Debug("reload not delivered", zap.Error(err))
			s.unregister(c)
			continue
		}
		sent++
	}
	s.logger.Info("reload broadcast", zap.String("source", s.source), zap.Int("clients", sent))
	return sent
}

// Listen binds addr. Port 0 picks a free port.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w on %s: %v", ErrListen, addr, err)
	}
	return ln, nil
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully and
// closes open websockets.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)

	s.mu.Lock()
	for c := range s.clients {
		_ = c.conn.Close()
		delete(s.clients, c)
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("shutting down preview server: %w", err)
	}
	return nil
}

// requestLogger logs each request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
