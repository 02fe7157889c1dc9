package oauth

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"kindlechess/pkg/logging"

	"github.com/Masterminds/sprig/v3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultCallbackTimeout is how long to wait for the OAuth callback.
const DefaultCallbackTimeout = 10 * time.Minute

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(
	template.New("pages").Funcs(sprig.FuncMap()).ParseFS(templateFS, "templates/*.html"),
)

// ExchangeFunc turns the code and state from the callback into a token.
// It is normally a closure over Session.ExchangeCode and the pending flow.
type ExchangeFunc func(ctx context.Context, code, state string) (*TokenInfo, error)

// CallbackResult is what the listener delivers: a token or the reason there is none.
type CallbackResult struct {
	Token *TokenInfo
	Err   error
}

// CallbackServer is a temporary local HTTP server for receiving the OAuth callback.
// It handles exactly one callback, delivers the outcome and shuts itself down.
type CallbackServer struct {
	listener net.Listener
	server   *http.Server
	exchange ExchangeFunc
	resultCh chan CallbackResult
	handled  atomic.Bool
	stopOnce sync.Once
	done     chan struct{}
}

// Listen binds the callback address for cfg. Port 0 picks an ephemeral port,
// which the caller reads back with ListenerPort before building the redirect URI.
func Listen(cfg Config) (net.Listener, error) {
	host := ""
	if isLoopback(cfg.RedirectHost) {
		host = "127.0.0.1"
	}
	addr := net.JoinHostPort(host, strconv.Itoa(cfg.RedirectPort))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server on %s: %w", addr, err)
	}
	return ln, nil
}

// ListenerPort returns the TCP port ln is bound to.
func ListenerPort(ln net.Listener) int {
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// NewCallbackServer creates a callback server on ln that resolves codes with exchange.
func NewCallbackServer(ln net.Listener, exchange ExchangeFunc) *CallbackServer {
	s := &CallbackServer{
		listener: ln,
		exchange: exchange,
		resultCh: make(chan CallbackResult, 1),
		done:     make(chan struct{}),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Get("/", s.handleIndex)
	r.Get("/callback", s.handleCallback)

	s.server = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start begins serving. The server stops when ctx is cancelled or after the
// first callback has been handled.
func (s *CallbackServer) Start(ctx context.Context) {
	logging.Info("OAuth", "Starting callback server on %s", s.listener.Addr())

	go func() {
		if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.deliver(CallbackResult{Err: fmt.Errorf("callback server: %w", err)})
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.done:
		}
	}()
}

// Port returns the port the server is listening on.
func (s *CallbackServer) Port() int {
	return ListenerPort(s.listener)
}

// Wait blocks until the callback has been handled or ctx ends.
func (s *CallbackServer) Wait(ctx context.Context) (*TokenInfo, error) {
	select {
	case res := <-s.resultCh:
		return res.Token, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done is closed once the server has shut down.
func (s *CallbackServer) Done() <-chan struct{} {
	return s.done
}

// Stop gracefully shuts down the callback server.
func (s *CallbackServer) Stop() {
	s.stopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctx)
		close(s.done)
		logging.Debug("OAuth", "Callback server stopped")
	})
}

func (s *CallbackServer) deliver(res CallbackResult) {
	select {
	case s.resultCh <- res:
	default:
	}
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func (s *CallbackServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, "index.html", nil)
}

// handleCallback handles the OAuth callback request exactly once.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	if !s.handled.CompareAndSwap(false, true) {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}

	res := s.processCallback(w, r)
	s.deliver(res)
	// Shutdown waits for this response to be flushed.
	go s.Stop()
}

func (s *CallbackServer) processCallback(w http.ResponseWriter, r *http.Request) CallbackResult {
	query := r.URL.Query()

	if code := query.Get("error"); code != "" {
		authErr := &AuthorizationError{Code: code, Description: query.Get("error_description")}
		logging.Warn("OAuth", "%s", authErr)
		renderError(w, http.StatusBadRequest, code, authErr.Description)
		return CallbackResult{Err: authErr}
	}

	code, state := query.Get("code"), query.Get("state")
	if code == "" || state == "" {
		logging.Warn("OAuth", "Callback without code or state")
		renderError(w, http.StatusBadRequest, "invalid_request", "No authorization code or state was received.")
		return CallbackResult{Err: ErrMissingCallbackParams}
	}

	logging.Info("OAuth", "Received authorization code, exchanging for token")
	tok, err := s.exchange(r.Context(), code, state)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrCSRFMismatch) || errors.Is(err, ErrNoPendingFlow) {
			status = http.StatusBadRequest
		}
		renderError(w, status, "exchange_failed", err.Error())
		return CallbackResult{Err: err}
	}

	render(w, http.StatusOK, "callback_success.html", map[string]any{
		"Scopes": tok.Scopes(),
	})
	return CallbackResult{Token: tok}
}

func renderError(w http.ResponseWriter, status int, code, description string) {
	render(w, status, "callback_error.html", map[string]string{
		"Error":       code,
		"Description": description,
	})
}

func render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		logging.Error("OAuth", err, "Failed to render %s", name)
	}
}
