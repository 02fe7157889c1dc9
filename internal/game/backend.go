package game

import (
	"context"
	"io"
	"iter"

	"kindlechess/internal/lichess"
	"kindlechess/internal/oauth"
)

// Backend is where a game is played: Lichess, or a board kept in memory.
type Backend interface {
	StreamGame(ctx context.Context, gameID string) (iter.Seq2[lichess.GameEvent, error], io.Closer, error)
	Move(ctx context.Context, gameID, move string) error
	Resign(ctx context.Context, gameID string) error
	Abort(ctx context.Context, gameID string) error
}

// OnlineBackend plays on Lichess with one account's token.
type OnlineBackend struct {
	client *lichess.Client
	token  *oauth.TokenInfo
}

// NewOnlineBackend binds client to token.
func NewOnlineBackend(client *lichess.Client, token *oauth.TokenInfo) *OnlineBackend {
	return &OnlineBackend{client: client, token: token}
}

func (b *OnlineBackend) StreamGame(ctx context.Context, gameID string) (iter.Seq2[lichess.GameEvent, error], io.Closer, error) {
	return b.client.StreamGame(ctx, gameID, b.token)
}

func (b *OnlineBackend) Move(ctx context.Context, gameID, move string) error {
	return b.client.Move(ctx, gameID, move, b.token)
}

func (b *OnlineBackend) Resign(ctx context.Context, gameID string) error {
	return b.client.Resign(ctx, gameID, b.token)
}

func (b *OnlineBackend) Abort(ctx context.Context, gameID string) error {
	return b.client.Abort(ctx, gameID, b.token)
}
