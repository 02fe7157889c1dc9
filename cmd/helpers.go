package cmd

import (
	"context"
	"errors"

	"kindlechess/internal/auth"
	"kindlechess/internal/cli"
	"kindlechess/internal/game"
	"kindlechess/internal/lichess"
	"kindlechess/internal/oauth"

	"github.com/spf13/cobra"
)

// newClient builds the Lichess API client from the loaded config.
func newClient() *lichess.Client {
	return lichess.NewClient(
		lichess.WithBaseURL(cfg.API.BaseURL),
		lichess.WithUserAgent("kindlechess/"+GetVersion()),
		lichess.WithStreamLineLimit(cfg.API.StreamLineLimit),
	)
}

func newTokenStore() *oauth.TokenStore {
	return oauth.NewTokenStore(cfg.Auth.TokenFile)
}

// newAuthenticator wires the token store, the account endpoint and the
// interactive login. Login output goes to stderr so stdout stays scriptable.
func newAuthenticator(cmd *cobra.Command, store *oauth.TokenStore, client *lichess.Client) *auth.Authenticator {
	return auth.New(store, client, auth.Options{
		OAuth: oauth.Config{
			ClientID:     cfg.Auth.ClientID,
			AuthURL:      cfg.API.OAuthURL,
			TokenURL:     cfg.API.TokenURL,
			RedirectHost: cfg.Auth.RedirectHost,
			RedirectPort: cfg.Auth.RedirectPort,
			Scopes:       cfg.Auth.Scopes,
		},
		CallbackTimeout: cfg.Auth.CallbackTimeout,
		Out:             cmd.ErrOrStderr(),
		Quiet:           quiet,
		ShowQR:          !quiet,
		OpenBrowser:     cfg.Auth.OpenBrowser,
	})
}

// requireToken returns the stored token without ever prompting. Commands
// that only read use this; "play" logs in on demand instead.
func requireToken(ctx context.Context, cmd *cobra.Command, client *lichess.Client) (*oauth.TokenInfo, *lichess.Identity, error) {
	store := newTokenStore()
	token, id, err := newAuthenticator(cmd, store, client).Stored(ctx)
	switch {
	case err == nil:
		return token, id, nil
	case errors.Is(err, oauth.ErrTokenNotFound):
		return nil, nil, &cli.AuthRequiredError{TokenFile: store.Path()}
	case errors.Is(err, lichess.ErrUnauthorized), errors.Is(err, oauth.ErrTokenCorrupt):
		return nil, nil, &cli.AuthFailedError{Reason: err}
	default:
		return nil, nil, withConnectionHint(err, cfg.API.BaseURL)
	}
}

// withConnectionHint replaces transport failures with a message that says
// what to check.
func withConnectionHint(err error, endpoint string) error {
	if connErr := cli.ClassifyConnectionError(err, endpoint); connErr != nil {
		return connErr
	}
	return err
}

func gameConfig() game.Config {
	return game.Config{
		MaxMoveAttempts:  cfg.Game.MaxMoveAttempts,
		MoveBackoff:      cfg.Game.MoveBackoff,
		MaxReconnects:    cfg.Game.MaxReconnects,
		ReconnectBackoff: cfg.Game.ReconnectBackoff,
	}
}
