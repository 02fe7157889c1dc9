// Package auth decides whether a stored Lichess token can be used and, when
// it cannot, runs the interactive PKCE login through a local callback.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"kindlechess/internal/cli"
	"kindlechess/internal/lichess"
	"kindlechess/internal/oauth"
	"kindlechess/pkg/logging"
)

// TokenStore is where the token lives between runs.
type TokenStore interface {
	Load() (*oauth.TokenInfo, error)
	Persist(token *oauth.TokenInfo) error
	Remove() error
	Path() string
}

// UserDirectory resolves a token to the account that owns it.
type UserDirectory interface {
	GetUserInfo(ctx context.Context, token *oauth.TokenInfo) (*lichess.Identity, error)
}

// Options configures the interactive login.
type Options struct {
	OAuth           oauth.Config
	CallbackTimeout time.Duration

	// Out receives the login URL, the QR code and the spinner.
	Out    io.Writer
	Quiet  bool
	ShowQR bool

	// OpenBrowser launches Browser with the login URL.
	OpenBrowser bool
	Browser     func(url string) error

	// HTTPClient is used for the token request. nil means http.DefaultClient.
	HTTPClient *http.Client
}

// Authenticator hands out a token together with the identity it belongs to.
type Authenticator struct {
	store TokenStore
	users UserDirectory
	opts  Options
}

// New creates an Authenticator.
func New(store TokenStore, users UserDirectory, opts Options) *Authenticator {
	if opts.CallbackTimeout <= 0 {
		opts.CallbackTimeout = oauth.DefaultCallbackTimeout
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Browser == nil {
		opts.Browser = oauth.OpenBrowser
	}
	return &Authenticator{store: store, users: users, opts: opts}
}

// GetAuthenticated returns a usable token and its identity. A stored token
// is used if Lichess still accepts it; a missing, corrupt or rejected token
// starts the interactive login.
//
// Errors from the login itself are returned as *cli.AuthFailedError. Other
// failures, such as the network being down, are returned unchanged.
func (a *Authenticator) GetAuthenticated(ctx context.Context) (*oauth.TokenInfo, *lichess.Identity, error) {
	token, id, err := a.Stored(ctx)
	switch {
	case err == nil:
		return token, id, nil
	case errors.Is(err, oauth.ErrTokenNotFound),
		errors.Is(err, oauth.ErrTokenCorrupt),
		errors.Is(err, lichess.ErrUnauthorized):
		logging.Info("Auth", "Stored token unusable (%v), starting login", err)
		return a.Login(ctx)
	default:
		return nil, nil, err
	}
}

// Stored loads the persisted token and validates it against Lichess.
// It never prompts.
func (a *Authenticator) Stored(ctx context.Context) (*oauth.TokenInfo, *lichess.Identity, error) {
	token, err := a.store.Load()
	if err != nil {
		return nil, nil, err
	}
	if token.Expired(time.Now()) {
		return nil, nil, fmt.Errorf("%w: stored token expired", lichess.ErrUnauthorized)
	}
	id, err := a.users.GetUserInfo(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	logging.Debug("Auth", "Stored token belongs to %s", id.Username)
	return token, id, nil
}

// Login always runs the interactive flow and persists the new token.
func (a *Authenticator) Login(ctx context.Context) (*oauth.TokenInfo, *lichess.Identity, error) {
	token, err := a.interactive(ctx)
	if err != nil {
		if isLoginFailure(err) {
			return nil, nil, &cli.AuthFailedError{Reason: err}
		}
		return nil, nil, err
	}

	if err := a.store.Persist(token); err != nil {
		return nil, nil, err
	}

	id, err := a.users.GetUserInfo(ctx, token)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch account after login: %w", err)
	}
	logging.Info("Auth", "Logged in as %s", id.Username)
	return token, id, nil
}

// Logout forgets the stored token.
func (a *Authenticator) Logout() error {
	return a.store.Remove()
}

// ErrCallbackTimeout is the reason reported when nobody completed the login in time.
var ErrCallbackTimeout = errors.New("timed out waiting for the authorization callback")

func (a *Authenticator) interactive(ctx context.Context) (*oauth.TokenInfo, error) {
	cfg, err := a.opts.OAuth.Resolve()
	if err != nil {
		return nil, err
	}

	ln, err := oauth.Listen(cfg)
	if err != nil {
		return nil, err
	}
	cfg.RedirectPort = oauth.ListenerPort(ln)

	var sessOpts []oauth.SessionOption
	if a.opts.HTTPClient != nil {
		sessOpts = append(sessOpts, oauth.WithHTTPClient(a.opts.HTTPClient))
	}
	session := oauth.NewSession(cfg, sessOpts...)
	flow, err := session.StartAuthFlow()
	if err != nil {
		ln.Close()
		return nil, err
	}

	srv := oauth.NewCallbackServer(ln, func(ctx context.Context, code, state string) (*oauth.TokenInfo, error) {
		return session.ExchangeCode(ctx, flow, code, state)
	})

	waitCtx, cancel := context.WithTimeout(ctx, a.opts.CallbackTimeout)
	defer cancel()
	srv.Start(waitCtx)
	defer srv.Stop()

	a.present(flow.AuthURL)

	progress := cli.StartProgress(a.opts.Out, a.opts.Quiet, "Waiting for authorization...")
	token, err := srv.Wait(waitCtx)
	if err != nil {
		progress.Fail("Authorization did not complete")
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrCallbackTimeout, a.opts.CallbackTimeout)
		}
		return nil, err
	}
	progress.Stop()
	return token, nil
}

func (a *Authenticator) present(authURL string) {
	fmt.Fprintf(a.opts.Out, "Open this URL to log in to Lichess:\n\n  %s\n\n", authURL)

	if a.opts.ShowQR {
		if qr, err := oauth.RenderQR(authURL); err == nil {
			fmt.Fprintf(a.opts.Out, "Or scan this code with your phone:\n\n%s\n", qr)
		} else {
			logging.Warn("Auth", "Could not render QR code: %v", err)
		}
	}

	if a.opts.OpenBrowser {
		if err := a.opts.Browser(authURL); err != nil {
			logging.Warn("Auth", "Could not open browser: %v", err)
		}
	}
}

func isLoginFailure(err error) bool {
	var authErr *oauth.AuthorizationError
	return errors.Is(err, oauth.ErrCSRFMismatch) ||
		errors.Is(err, oauth.ErrExchangeFailed) ||
		errors.Is(err, oauth.ErrNoPendingFlow) ||
		errors.Is(err, oauth.ErrMissingCallbackParams) ||
		errors.Is(err, ErrCallbackTimeout) ||
		errors.As(err, &authErr)
}
