package oauth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"

	"kindlechess/pkg/logging"

	"golang.org/x/oauth2"
)

// AutoHost asks for the redirect URI to use this machine's LAN address, so a
// phone scanning the QR code can reach the callback listener.
const AutoHost = "auto"

// Config is the immutable OAuth client configuration.
type Config struct {
	ClientID     string
	AuthURL      string
	TokenURL     string
	RedirectHost string
	RedirectPort int
	Scopes       []string
}

// RedirectURI returns the callback URL registered with the authorization request.
func (c Config) RedirectURI() string {
	return "http://" + net.JoinHostPort(c.RedirectHost, strconv.Itoa(c.RedirectPort)) + "/callback"
}

// Resolve replaces AutoHost with the outbound LAN address.
func (c Config) Resolve() (Config, error) {
	if c.RedirectHost != AutoHost {
		return c, nil
	}
	ip, err := LocalIP()
	if err != nil {
		return c, err
	}
	c.RedirectHost = ip
	return c, nil
}

// LocalIP returns the address of the interface used for outbound traffic.
// No packets are sent: dialing UDP only selects a route.
func LocalIP() (string, error) {
	conn, err := net.Dial("udp", "192.0.2.1:80")
	if err != nil {
		return "", fmt.Errorf("failed to determine local address: %w", err)
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}

// AuthFlow is one in-flight authorization attempt.
// It is returned by StartAuthFlow and handed back to ExchangeCode.
type AuthFlow struct {
	State        string
	CodeVerifier string
	AuthURL      string

	owner      *Session
	generation uint64
	consumed   atomic.Bool
}

// Session creates authorization flows and exchanges their codes.
// Only the most recently started flow can be exchanged.
type Session struct {
	cfg        Config
	oauthCfg   oauth2.Config
	httpClient *http.Client
	generation atomic.Uint64
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithHTTPClient sets the client used for the token request.
func WithHTTPClient(c *http.Client) SessionOption {
	return func(s *Session) {
		s.httpClient = c
	}
}

// NewSession builds a session for cfg. cfg is copied.
func NewSession(cfg Config, opts ...SessionOption) *Session {
	cfg.Scopes = append([]string(nil), cfg.Scopes...)
	s := &Session{
		cfg: cfg,
		oauthCfg: oauth2.Config{
			ClientID: cfg.ClientID,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
				// Public client: client_id goes in the form body, no secret.
				AuthStyle: oauth2.AuthStyleInParams,
			},
			RedirectURL: cfg.RedirectURI(),
			Scopes:      cfg.Scopes,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// StartAuthFlow creates a new flow and makes it the only pending one.
func (s *Session) StartAuthFlow() (*AuthFlow, error) {
	state, err := GenerateState()
	if err != nil {
		return nil, err
	}
	verifier := GenerateVerifier()

	flow := &AuthFlow{
		State:        state,
		CodeVerifier: verifier,
		AuthURL:      s.oauthCfg.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)),
		owner:        s,
		generation:   s.generation.Add(1),
	}

	logging.Debug("OAuth", "Started authorization flow #%d", flow.generation)
	return flow, nil
}

// ExchangeCode trades an authorization code for a token.
//
// The flow must be the latest one started on this session and not yet used.
// A flow replaced by a later StartAuthFlow gets ErrNoPendingFlow, whatever
// state comes with it, and leaves the current flow untouched.
// A state mismatch destroys the flow so a replayed callback cannot succeed.
func (s *Session) ExchangeCode(ctx context.Context, flow *AuthFlow, code, state string) (*TokenInfo, error) {
	if flow == nil || flow.owner != s || flow.generation != s.generation.Load() {
		return nil, ErrNoPendingFlow
	}
	if !flow.consumed.CompareAndSwap(false, true) {
		return nil, ErrNoPendingFlow
	}

	if state != flow.State {
		logging.Audit(logging.AuditEvent{Action: "csrf_state_mismatch", Outcome: "rejected"})
		return nil, ErrCSRFMismatch
	}

	if s.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}

	tok, err := s.oauthCfg.Exchange(ctx, code, oauth2.VerifierOption(flow.CodeVerifier))
	if err != nil {
		// A failed exchange leaves the flow pending.
		flow.consumed.Store(false)
		logging.Error("OAuth", err, "Token exchange failed")
		return nil, fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}

	logging.Audit(logging.AuditEvent{Action: "token_exchanged", Outcome: "success", Target: s.cfg.TokenURL})
	return tokenInfoFrom(tok), nil
}
