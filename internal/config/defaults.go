package config

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultAPIBaseURL   = "https://lichess.org/api"
	DefaultOAuthURL     = "https://lichess.org/oauth"
	DefaultTokenURL     = "https://lichess.org/api/token"
	DefaultRedirectHost = "localhost"
	DefaultRedirectPort = 8080

	// DefaultClientIDPrefix prefixes the generated client id. Lichess accepts
	// any client id for PKCE apps, so a random suffix is enough.
	DefaultClientIDPrefix = "kindlechess-"

	tokenFileName = "token.json"
)

// DefaultScopes are the scopes requested when none are configured.
var DefaultScopes = []string{"challenge:read", "challenge:write", "bot:play", "board:play"}

// DefaultClientID returns a fresh client id of the form kindlechess-<uuid>.
func DefaultClientID() string {
	return DefaultClientIDPrefix + uuid.NewString()
}

// GetDefaultConfig returns the default configuration rooted at configDir.
// The token file lives next to config.yaml unless overridden.
func GetDefaultConfig(configDir string) Config {
	return Config{
		API: APIConfig{
			BaseURL:  DefaultAPIBaseURL,
			OAuthURL: DefaultOAuthURL,
			TokenURL: DefaultTokenURL,
		},
		Auth: AuthConfig{
			ClientID:        DefaultClientID(),
			RedirectHost:    DefaultRedirectHost,
			RedirectPort:    DefaultRedirectPort,
			Scopes:          append([]string(nil), DefaultScopes...),
			TokenFile:       filepath.Join(configDir, tokenFileName),
			CallbackTimeout: 10 * time.Minute,
			OpenBrowser:     true,
		},
		Game: GameConfig{
			MaxMoveAttempts:  5,
			MoveBackoff:      500 * time.Millisecond,
			MaxReconnects:    5,
			ReconnectBackoff: time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
