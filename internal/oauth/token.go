package oauth

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// TokenInfo is the credential obtained from the token endpoint.
//
// ExpiresIn and ExpiresAt are zero when the server did not report an expiry.
// Lichess personal tokens are long lived, so that is the common case.
// Scope is empty when the server did not echo the granted scopes.
type TokenInfo struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in,omitempty"` // seconds, as reported at issue time
	ExpiresAt   int64  `json:"expires_at,omitempty"` // unix seconds
	Scope       string `json:"scope,omitempty"`
}

// tokenInfoFrom converts an oauth2 token response.
func tokenInfoFrom(tok *oauth2.Token) *TokenInfo {
	info := &TokenInfo{
		AccessToken: tok.AccessToken,
		TokenType:   tok.Type(),
		ExpiresIn:   tok.ExpiresIn,
	}
	if !tok.Expiry.IsZero() {
		info.ExpiresAt = tok.Expiry.Unix()
		if info.ExpiresIn == 0 {
			info.ExpiresIn = int64(time.Until(tok.Expiry).Round(time.Second).Seconds())
		}
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		info.Scope = scope
	}
	return info
}

// Expired reports whether the token carries an expiry that has passed.
func (t *TokenInfo) Expired(now time.Time) bool {
	return t.ExpiresAt != 0 && now.Unix() >= t.ExpiresAt
}

// Scopes splits the space separated scope string.
func (t *TokenInfo) Scopes() []string {
	return strings.Fields(t.Scope)
}

// OAuth2Token converts back for use with oauth2.StaticTokenSource.
func (t *TokenInfo) OAuth2Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		ExpiresIn:   t.ExpiresIn,
	}
	if t.ExpiresAt != 0 {
		tok.Expiry = time.Unix(t.ExpiresAt, 0)
	}
	return tok
}
