package config

import "time"

// Config is the top-level configuration structure for kindlechess.
type Config struct {
	API  APIConfig  `yaml:"api" envPrefix:"API_"`
	Auth AuthConfig `yaml:"auth" envPrefix:"AUTH_"`
	Game GameConfig `yaml:"game" envPrefix:"GAME_"`
	Log  LogConfig  `yaml:"log" envPrefix:"LOG_"`
}

// APIConfig points the client at a Lichess deployment.
type APIConfig struct {
	BaseURL  string `yaml:"baseURL,omitempty" env:"BASE_URL" validate:"required,url"`   // REST base, e.g. https://lichess.org/api
	OAuthURL string `yaml:"oauthURL,omitempty" env:"OAUTH_URL" validate:"required,url"` // authorization endpoint
	TokenURL string `yaml:"tokenURL,omitempty" env:"TOKEN_URL" validate:"required,url"` // token endpoint

	StreamLineLimit int `yaml:"streamLineLimit,omitempty" env:"STREAM_LINE_LIMIT" validate:"gte=0"` // bytes per stream event, 0 for the default
}

// AuthConfig defines the OAuth2 PKCE client settings.
type AuthConfig struct {
	ClientID        string        `yaml:"clientID,omitempty" env:"CLIENT_ID" validate:"required"`
	RedirectHost    string        `yaml:"redirectHost,omitempty" env:"REDIRECT_HOST" validate:"required"`
	RedirectPort    int           `yaml:"redirectPort" env:"REDIRECT_PORT" validate:"gte=0,lte=65535"` // 0 picks an ephemeral port
	Scopes          []string      `yaml:"scopes,omitempty" env:"SCOPES" envSeparator:"," validate:"dive,required"`
	TokenFile       string        `yaml:"tokenFile,omitempty" env:"TOKEN_FILE" validate:"required"`
	CallbackTimeout time.Duration `yaml:"callbackTimeout,omitempty" env:"CALLBACK_TIMEOUT" validate:"gt=0"`
	OpenBrowser     bool          `yaml:"openBrowser" env:"OPEN_BROWSER"`
}

// GameConfig tunes the game session retry behaviour.
type GameConfig struct {
	MaxMoveAttempts  int           `yaml:"maxMoveAttempts,omitempty" env:"MAX_MOVE_ATTEMPTS" validate:"gte=1"`
	MoveBackoff      time.Duration `yaml:"moveBackoff,omitempty" env:"MOVE_BACKOFF" validate:"gte=0"`
	MaxReconnects    int           `yaml:"maxReconnects" env:"MAX_RECONNECTS" validate:"gte=0"` // 0 ends the session when the stream closes
	ReconnectBackoff time.Duration `yaml:"reconnectBackoff,omitempty" env:"RECONNECT_BACKOFF" validate:"gte=0"`
}

// LogConfig controls where logs go.
type LogConfig struct {
	Level string `yaml:"level,omitempty" env:"LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
	File  string `yaml:"file,omitempty" env:"FILE"` // empty logs to stderr
}
