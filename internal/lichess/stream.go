package lichess

import (
	"context"
	"io"
	"iter"
	"net/http"
	"net/url"

	"kindlechess/internal/ndjson"
	"kindlechess/internal/oauth"
	"kindlechess/pkg/logging"
)

// StreamEvents opens the account event feed (game starts, challenges).
// The caller ranges over the sequence and closes the returned Closer.
func (c *Client) StreamEvents(ctx context.Context, token *oauth.TokenInfo) (iter.Seq2[AccountEvent, error], io.Closer, error) {
	body, err := c.openStream(ctx, "/stream/event", token, "event stream")
	if err != nil {
		return nil, nil, err
	}
	logging.Info("EventStream", "Account event stream opened")
	return ndjson.Decode[AccountEvent](body, c.streamOpts...), body, nil
}

// StreamGame opens the board stream for gameID. The first event is a
// gameFull; gameState, chatLine and opponentGone follow.
func (c *Client) StreamGame(ctx context.Context, gameID string, token *oauth.TokenInfo) (iter.Seq2[GameEvent, error], io.Closer, error) {
	body, err := c.openStream(ctx, "/board/game/stream/"+url.PathEscape(gameID), token, "game stream")
	if err != nil {
		return nil, nil, err
	}
	logging.Info("GameStream", "Game stream for %s opened", gameID)
	return ndjson.Decode[GameEvent](body, c.streamOpts...), body, nil
}

func (c *Client) openStream(ctx context.Context, path string, token *oauth.TokenInfo, op string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.do(ctx, req, token, op, ErrRejected)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
