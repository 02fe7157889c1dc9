package lichess

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"kindlechess/internal/ndjson"
	"kindlechess/internal/oauth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToken = &oauth.TokenInfo{AccessToken: "lio_secret", TokenType: "Bearer"}

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL+"/api/"), WithHTTPClient(srv.Client()))
}

func requireBearer(t *testing.T, r *http.Request) {
	t.Helper()
	assert.Equal(t, "Bearer lio_secret", r.Header.Get("Authorization"))
}

func TestGetUserInfo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/account", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		fmt.Fprint(w, `{
			"id":"georges","username":"Georges","title":"NM",
			"createdAt":1290415680000,"seenAt":1522636452014,
			"perfs":{"blitz":{"games":2945,"rating":1609,"rd":60,"prog":-22}},
			"profile":{"country":"EC","bio":"Free bugs!"},
			"playTime":{"total":3296897,"tv":12134},
			"patron":true
		}`)
	})
	c := newTestClient(t, mux)

	id, err := c.GetUserInfo(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, "georges", id.ID)
	assert.Equal(t, "Georges", id.Username)
	assert.Equal(t, "NM", id.Title)
	assert.Equal(t, int64(1290415680000), id.CreatedAt)
	assert.Equal(t, 1609, id.Perfs["blitz"].Rating)
	assert.Equal(t, "EC", id.Profile.Country)
	assert.Equal(t, int64(12134), id.PlayTime.TV)
	assert.True(t, id.Patron)
}

func TestGetUserInfo_NonSuccessIsUnauthorized(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /api/account", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				fmt.Fprint(w, `{"error":"No such token"}`)
			})
			c := newTestClient(t, mux)

			_, err := c.GetUserInfo(context.Background(), testToken)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnauthorized)
			assert.Equal(t, status, StatusCode(err))
			assert.Contains(t, err.Error(), "No such token")
		})
	}
}

func TestOngoingGames(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/account/playing", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		assert.Equal(t, "5", r.URL.Query().Get("nb"))
		fmt.Fprint(w, `{"nowPlaying":[
			{"fullId":"AbCdEfGh1234","gameId":"AbCdEfGh","fen":"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			 "color":"white","lastMove":"","source":"friend","status":{"id":20,"name":"started"},
			 "variant":{"key":"standard","name":"Standard"},"speed":"correspondence","perf":"correspondence",
			 "rated":false,"hasMoved":false,"opponent":{"id":"maia1","username":"maia1","rating":1500},
			 "isMyTurn":true,"secondsLeft":259200}
		]}`)
	})
	c := newTestClient(t, mux)

	games, err := c.OngoingGames(context.Background(), testToken, 5)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "AbCdEfGh", games[0].GameID)
	assert.Equal(t, "white", games[0].Color)
	assert.Equal(t, "started", games[0].Status.Name)
	assert.Equal(t, "maia1", games[0].Opponent.Username)
	assert.True(t, games[0].IsMyTurn)
}

func TestDailyPuzzle_Unauthenticated(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/puzzle/daily", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"game":{"id":"g1","perf":{"key":"blitz","name":"Blitz"},"rated":true,
			"players":[{"name":"a","id":"a","color":"white","rating":2000}],"pgn":"e4 e5","clock":"3+0"},
			"puzzle":{"id":"p1","rating":1800,"plays":1000,"solution":["e2e4"],"themes":["mateIn1"],"initialPly":2}}`)
	})
	c := newTestClient(t, mux)

	p, err := c.DailyPuzzle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p1", p.Puzzle.ID)
	assert.Equal(t, []string{"e2e4"}, p.Puzzle.Solution)
	assert.Equal(t, "Blitz", p.Game.Perf.Name)
}

func TestMove(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/board/game/{id}/move/{move}", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		mu.Lock()
		paths = append(paths, r.PathValue("id")+"/"+r.PathValue("move"))
		mu.Unlock()
		fmt.Fprint(w, `{"ok":true}`)
	})
	c := newTestClient(t, mux)

	require.NoError(t, c.Move(context.Background(), "game1", "  e2e4\n", testToken))
	require.NoError(t, c.Move(context.Background(), "game1", "e7e8q", testToken))
	assert.Equal(t, []string{"game1/e2e4", "game1/e7e8q"}, paths)

	assert.ErrorIs(t, c.Move(context.Background(), "game1", "   ", testToken), ErrEmptyMove)
}

func TestMove_RejectedCarriesStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/board/game/{id}/move/{move}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"Not your turn, or game already over"}`)
	})
	c := newTestClient(t, mux)

	err := c.Move(context.Background(), "game1", "e2e4", testToken)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)
	assert.False(t, errors.Is(err, ErrUnauthorized))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Not your turn, or game already over", apiErr.Message)
}

func TestBoardActions_Unauthorized(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/board/game/{id}/{action}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	c := newTestClient(t, mux)

	err := c.Resign(context.Background(), "game1", testToken)
	assert.ErrorIs(t, err, ErrRejected)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResignAndAbort(t *testing.T) {
	var got []string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/board/game/{id}/resign", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		got = append(got, "resign:"+r.PathValue("id"))
	})
	mux.HandleFunc("POST /api/board/game/{id}/abort", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		got = append(got, "abort:"+r.PathValue("id"))
	})
	c := newTestClient(t, mux)

	require.NoError(t, c.Resign(context.Background(), "g1", testToken))
	require.NoError(t, c.Abort(context.Background(), "g2", testToken))
	assert.Equal(t, []string{"resign:g1", "abort:g2"}, got)
}

func TestStreamGame(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/board/game/stream/{id}", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		assert.Equal(t, "game1", r.PathValue("id"))
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"type":"gameFull","id":"game1","white":{"id":"me","name":"Me","rating":1500},"black":{"aiLevel":3},"initialFen":"startpos","state":{"type":"gameState","moves":"","status":"started"}}`)
		fmt.Fprintln(w)
		fmt.Fprintln(w, `{"type":"gameState","moves":"e2e4","status":"started"}`)
		fmt.Fprintln(w, `{"type":"somethingNew"}`)
		fmt.Fprintln(w, `{"type":"chatLine","username":"lichess","text":"hi","room":"player"}`)
		fmt.Fprintln(w, `{"type":"opponentGone","gone":true,"claimWinInSeconds":10}`)
	})
	c := newTestClient(t, mux)

	seq, closer, err := c.StreamGame(context.Background(), "game1", testToken)
	require.NoError(t, err)
	defer closer.Close()

	var kinds []string
	var parseErrs, closed int
	for ev, err := range seq {
		switch {
		case errors.Is(err, ndjson.ErrTransientParse):
			parseErrs++
			var unknown *UnknownEventError
			assert.True(t, errors.As(err, &unknown))
			continue
		case errors.Is(err, ndjson.ErrConnectionClosed):
			closed++
			continue
		}
		require.NoError(t, err)
		kinds = append(kinds, fmt.Sprintf("%T", ev.Value))
	}

	assert.Equal(t, []string{"*lichess.GameFull", "*lichess.GameState", "*lichess.ChatLine", "*lichess.OpponentGone"}, kinds)
	assert.Equal(t, 1, parseErrs)
	assert.Equal(t, 1, closed)
}

func TestStreamGame_LineLimit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/board/game/stream/{id}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"type":"gameState","moves":"e2e4","status":"started"}`)
		fmt.Fprintln(w, `{"type":"chatLine","username":"lichess","room":"player","text":"`+strings.Repeat("x", 512)+`"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := NewClient(WithBaseURL(srv.URL+"/api"), WithHTTPClient(srv.Client()), WithStreamLineLimit(128))

	seq, closer, err := c.StreamGame(context.Background(), "game1", testToken)
	require.NoError(t, err)
	defer closer.Close()

	var events int
	var last error
	for _, err := range seq {
		if err != nil {
			last = err
			continue
		}
		events++
	}

	assert.Equal(t, 1, events)
	assert.ErrorIs(t, last, ndjson.ErrConnectionClosed)
}

func TestStreamGame_OpenFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/board/game/stream/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	c := newTestClient(t, mux)

	_, _, err := c.StreamGame(context.Background(), "missing", testToken)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestStreamEvents(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/stream/event", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		fmt.Fprintln(w, `{"type":"challenge","challenge":{"id":"c1","url":"https://lichess.org/c1","status":"created","challenger":{"id":"bob","name":"Bob"},"variant":{"key":"standard","name":"Standard"},"rated":false,"speed":"blitz","timeControl":{"type":"clock","limit":300,"increment":0,"show":"5+0"},"color":"random","perf":{"name":"Blitz"}}}`)
		fmt.Fprintln(w, `{"type":"challengeCanceled","challenge":{"id":"c1","status":"canceled","challenger":{"id":"bob","name":"Bob"}}}`)
		fmt.Fprintln(w, `{"type":"gameStart","game":{"gameId":"g9","fullId":"g9xxxx","color":"black","status":{"id":20,"name":"started"},"isMyTurn":false,"opponent":{"id":"bob","username":"Bob"}}}`)
	})
	c := newTestClient(t, mux)

	seq, closer, err := c.StreamEvents(context.Background(), testToken)
	require.NoError(t, err)
	defer closer.Close()

	var values []any
	for ev, err := range seq {
		if err != nil {
			assert.ErrorIs(t, err, ndjson.ErrConnectionClosed)
			break
		}
		values = append(values, ev.Value)
	}

	require.Len(t, values, 3)
	ch, ok := values[0].(*ChallengeEvent)
	require.True(t, ok)
	assert.Equal(t, "5+0", ch.Challenge.TimeControl.Show)
	_, ok = values[1].(*ChallengeCanceled)
	assert.True(t, ok)
	gs, ok := values[2].(*GameStart)
	require.True(t, ok)
	assert.Equal(t, "g9", gs.Game.GameID)
	assert.Equal(t, "black", gs.Game.Color)
}

func TestStatusCode_NonAPIError(t *testing.T) {
	assert.Zero(t, StatusCode(errors.New("boom")))
	assert.Zero(t, StatusCode(nil))
}
