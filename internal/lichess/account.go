package lichess

import (
	"context"
	"fmt"

	"kindlechess/internal/oauth"
)

// GetUserInfo fetches the account the token belongs to.
// Any non-2xx answer is reported as ErrUnauthorized with the status attached.
func (c *Client) GetUserInfo(ctx context.Context, token *oauth.TokenInfo) (*Identity, error) {
	var id Identity
	if err := c.getJSON(ctx, "/account", token, "account", ErrUnauthorized, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// OngoingGames lists up to n games the account is currently playing,
// most urgent first.
func (c *Client) OngoingGames(ctx context.Context, token *oauth.TokenInfo, n int) ([]GameInfo, error) {
	if n <= 0 {
		n = 9
	}
	var out struct {
		NowPlaying []GameInfo `json:"nowPlaying"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/account/playing?nb=%d", n), token, "ongoing games", ErrRejected, &out); err != nil {
		return nil, err
	}
	return out.NowPlaying, nil
}

// DailyPuzzle fetches today's puzzle. No token is needed.
func (c *Client) DailyPuzzle(ctx context.Context) (*DailyPuzzle, error) {
	var p DailyPuzzle
	if err := c.getJSON(ctx, "/puzzle/daily", nil, "daily puzzle", ErrRejected, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
