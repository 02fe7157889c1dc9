// Package config provides configuration management for kindlechess.
//
// Configuration is loaded from a single directory. The default is
// ~/.config/kindlechess, and the --config-path flag selects another one.
//
// # Configuration Directory
//
//   - config.yaml (optional, YAML)
//   - .env (optional, KEY=value lines applied to the environment)
//   - token.json (written by the auth flow unless auth.tokenFile says otherwise)
//
// # Environment Overrides
//
// Every field can be overridden with a KINDLECHESS_ variable, for example
// KINDLECHESS_AUTH_CLIENT_ID, KINDLECHESS_API_BASE_URL or
// KINDLECHESS_GAME_MAX_RECONNECTS. Scopes are comma separated.
//
// # Example
//
//	api:
//	  baseURL: https://lichess.org/api
//	auth:
//	  redirectPort: 8080
//	  scopes: [board:play]
//	  callbackTimeout: 5m
//	game:
//	  maxMoveAttempts: 3
//	  maxReconnects: 0
//	log:
//	  level: debug
//	  file: /mnt/us/kindlechess/app.log
package config
