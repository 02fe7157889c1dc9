package game

import (
	"context"
	"errors"
	"io"
	"iter"
	"testing"

	"kindlechess/internal/lichess"
	"kindlechess/internal/ndjson"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func iterPull(seq iter.Seq2[lichess.GameEvent, error]) (func() (lichess.GameEvent, error), func()) {
	next, stop := iter.Pull2(seq)
	return func() (lichess.GameEvent, error) {
		ev, err, ok := next()
		if !ok {
			return lichess.GameEvent{}, io.EOF
		}
		return ev, err
	}, stop
}

func TestLocalBackend_Rules(t *testing.T) {
	ctx := context.Background()
	b := NewLocalBackend("local", user("me"), user("me"))

	assert.ErrorIs(t, b.Move(ctx, "local", "  "), lichess.ErrEmptyMove)
	assert.ErrorIs(t, b.Move(ctx, "other", "e2e4"), lichess.ErrRejected)

	require.NoError(t, b.Move(ctx, "local", "e2e4"))
	require.NoError(t, b.Move(ctx, "local", " e7e5 "))
	assert.Equal(t, "e2e4 e7e5", b.Moves())

	assert.ErrorIs(t, b.Abort(ctx, "local"), lichess.ErrRejected, "abort after both sides moved")

	require.NoError(t, b.Resign(ctx, "local"))
	assert.Equal(t, "resign", b.Status())

	assert.ErrorIs(t, b.Move(ctx, "local", "g1f3"), lichess.ErrRejected)
	assert.ErrorIs(t, b.Resign(ctx, "local"), lichess.ErrRejected)
}

func TestLocalBackend_AbortBeforeMoves(t *testing.T) {
	ctx := context.Background()
	b := NewLocalBackend("local", user("me"), ai(1))

	require.NoError(t, b.Move(ctx, "local", "e2e4"))
	require.NoError(t, b.Abort(ctx, "local"))
	assert.Equal(t, "aborted", b.Status())
}

func TestLocalBackend_Stream(t *testing.T) {
	ctx := context.Background()
	b := NewLocalBackend("local", user("me"), user("friend"))
	require.NoError(t, b.Move(ctx, "local", "d2d4"))

	events, closer, err := b.StreamGame(ctx, "local")
	require.NoError(t, err)
	defer closer.Close()

	next, stop := iterPull(events)
	defer stop()

	ev, err := next()
	require.NoError(t, err)
	fullEv, ok := ev.Value.(*lichess.GameFull)
	require.True(t, ok)
	assert.Equal(t, "d2d4", fullEv.State.Moves)
	assert.True(t, fullEv.White.Is("me"))

	require.NoError(t, b.Move(ctx, "local", "d7d5"))
	ev, err = next()
	require.NoError(t, err)
	assert.Equal(t, "d2d4 d7d5", ev.Value.(*lichess.GameState).Moves)

	require.NoError(t, b.Resign(ctx, "local"))
	ev, err = next()
	require.NoError(t, err)
	st := ev.Value.(*lichess.GameState)
	assert.Equal(t, "resign", st.Status)
	assert.Equal(t, "black", st.Winner)

	_, err = next()
	assert.ErrorIs(t, err, ndjson.ErrConnectionClosed)
}

func TestLocalBackend_CloseEndsStream(t *testing.T) {
	b := NewLocalBackend("local", user("me"), user("me"))
	events, closer, err := b.StreamGame(context.Background(), "local")
	require.NoError(t, err)

	var got []error
	count := 0
	require.NoError(t, closer.Close())
	for _, err := range events {
		count++
		if err != nil {
			got = append(got, err)
		}
	}
	assert.Equal(t, 2, count)
	require.Len(t, got, 1)
	assert.True(t, errors.Is(got[0], ndjson.ErrConnectionClosed))
}

func TestLocalBackend_HotSeatSession(t *testing.T) {
	b := NewLocalBackend("local", user("me"), user("me"))
	source := newFakeSource()
	source.actions <- Move("e2e4")
	source.actions <- Move("e7e5")
	source.actions <- Resign()

	s := NewSession(b, "local", me, source, nil, testConfig())
	require.NoError(t, waitRun(t, runSession(s)))

	snap := s.Snapshot()
	assert.Equal(t, SideBoth, snap.Side)
	assert.Equal(t, StateTerminal, snap.State)
	assert.Equal(t, "e2e4 e7e5", snap.Moves)
	assert.Equal(t, "resign", snap.Status)
	assert.Equal(t, int32(3), source.calls.Load())
}
