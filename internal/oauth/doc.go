// Package oauth implements the Lichess OAuth2 authorization code flow with
// PKCE for a public client.
//
// # Flow
//
//  1. Listen binds the local callback address (port 0 picks a free port).
//  2. NewSession builds an x/oauth2 config whose redirect URI points at it.
//  3. StartAuthFlow creates an AuthFlow holding the PKCE verifier and a
//     random CSRF state. Starting a new flow invalidates the previous one.
//  4. The user opens AuthFlow.AuthURL (printed, rendered with RenderQR, or
//     opened with OpenBrowser).
//  5. CallbackServer receives the redirect, calls ExchangeCode with the flow
//     and delivers exactly one result to Wait before shutting down.
//  6. TokenStore persists the resulting TokenInfo with 0600 permissions.
//
// # Errors
//
// ExchangeCode reports ErrNoPendingFlow for a nil, used or superseded flow,
// ErrCSRFMismatch when the returned state differs, and wraps token endpoint
// failures in ErrExchangeFailed. A callback carrying an error parameter is
// delivered as *AuthorizationError.
package oauth
