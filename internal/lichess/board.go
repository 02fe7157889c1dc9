package lichess

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"kindlechess/internal/oauth"
	"kindlechess/pkg/logging"
)

// ErrEmptyMove is returned for a blank move string; nothing is sent.
var ErrEmptyMove = errors.New("empty move")

// Move plays move (UCI, e.g. "e2e4") in gameID.
func (c *Client) Move(ctx context.Context, gameID, move string, token *oauth.TokenInfo) error {
	move = strings.TrimSpace(move)
	if move == "" {
		return ErrEmptyMove
	}
	path := "/board/game/" + url.PathEscape(gameID) + "/move/" + url.PathEscape(move)
	if err := c.post(ctx, path, token, "move"); err != nil {
		logging.Warn("Board", "Move %s in %s failed: %v", move, gameID, err)
		return err
	}
	logging.Info("Board", "Move %s played in %s", move, gameID)
	return nil
}

// Resign resigns gameID.
func (c *Client) Resign(ctx context.Context, gameID string, token *oauth.TokenInfo) error {
	if err := c.post(ctx, "/board/game/"+url.PathEscape(gameID)+"/resign", token, "resign"); err != nil {
		return err
	}
	logging.Info("Board", "Game %s resigned", gameID)
	return nil
}

// Abort aborts gameID. Lichess only allows this before both sides have moved.
func (c *Client) Abort(ctx context.Context, gameID string, token *oauth.TokenInfo) error {
	if err := c.post(ctx, "/board/game/"+url.PathEscape(gameID)+"/abort", token, "abort"); err != nil {
		return err
	}
	logging.Info("Board", "Game %s aborted", gameID)
	return nil
}

func (c *Client) post(ctx context.Context, path string, token *oauth.TokenInfo, op string) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, req, token, op, ErrRejected)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}
