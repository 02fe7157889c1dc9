package game

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"
	"sync"
	"time"

	"kindlechess/internal/lichess"
	"kindlechess/internal/ndjson"
	"kindlechess/pkg/logging"
)

const subscriberBuffer = 64

// LocalBackend is a hot-seat board held in memory. Moves are not checked
// for legality; each accepted move is pushed to every open stream as a
// gameState, the same way Lichess reports it.
type LocalBackend struct {
	gameID string
	white  lichess.PlayedBy
	black  lichess.PlayedBy

	mu      sync.Mutex
	moves   []string
	status  string
	winner  string
	created time.Time
	subs    map[*localStream]struct{}
}

// NewLocalBackend starts a new game between white and black.
func NewLocalBackend(gameID string, white, black lichess.PlayedBy) *LocalBackend {
	return &LocalBackend{
		gameID:  gameID,
		white:   white,
		black:   black,
		status:  lichess.StatusStarted,
		created: time.Now(),
		subs:    make(map[*localStream]struct{}),
	}
}

// GameID returns the id the game is streamed under.
func (b *LocalBackend) GameID() string {
	return b.gameID
}

// StreamGame yields a gameFull for the current position followed by a
// gameState for every change. The stream closes once the game is over.
func (b *LocalBackend) StreamGame(ctx context.Context, gameID string) (iter.Seq2[lichess.GameEvent, error], io.Closer, error) {
	if err := b.checkID(gameID); err != nil {
		return nil, nil, err
	}

	sub := &localStream{
		events: make(chan *lichess.GameState, subscriberBuffer),
		closed: make(chan struct{}),
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	full := &lichess.GameFull{
		ID:         b.gameID,
		Variant:    lichess.Variant{Key: "standard", Name: "Standard"},
		Speed:      "correspondence",
		CreatedAt:  b.created.UnixMilli(),
		White:      b.white,
		Black:      b.black,
		InitialFen: "startpos",
		State:      *b.stateLocked(),
	}
	b.mu.Unlock()

	seq := func(yield func(lichess.GameEvent, error) bool) {
		defer b.unsubscribe(sub)

		if !yield(lichess.GameEvent{Value: full}, nil) {
			return
		}
		if !lichess.IsOngoingStatus(full.State.Status) {
			yield(lichess.GameEvent{}, ndjson.ErrConnectionClosed)
			return
		}

		for {
			select {
			case st := <-sub.events:
				if !yield(lichess.GameEvent{Value: st}, nil) {
					return
				}
				if !lichess.IsOngoingStatus(st.Status) {
					yield(lichess.GameEvent{}, ndjson.ErrConnectionClosed)
					return
				}
			case <-sub.closed:
				yield(lichess.GameEvent{}, ndjson.ErrConnectionClosed)
				return
			case <-ctx.Done():
				yield(lichess.GameEvent{}, fmt.Errorf("%w: %w", ndjson.ErrConnectionClosed, ctx.Err()))
				return
			}
		}
	}
	return seq, sub, nil
}

// Move appends move for whichever side is to play.
func (b *LocalBackend) Move(_ context.Context, gameID, move string) error {
	if err := b.checkID(gameID); err != nil {
		return err
	}
	move = strings.TrimSpace(move)
	if move == "" {
		return lichess.ErrEmptyMove
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !lichess.IsOngoingStatus(b.status) {
		return fmt.Errorf("%w: game is over (%s)", lichess.ErrRejected, b.status)
	}
	b.moves = append(b.moves, move)
	logging.Debug("LocalBoard", "Move %d: %s", len(b.moves), move)
	b.publishLocked()
	return nil
}

// Resign ends the game in favour of the side not to move.
func (b *LocalBackend) Resign(_ context.Context, gameID string) error {
	if err := b.checkID(gameID); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !lichess.IsOngoingStatus(b.status) {
		return fmt.Errorf("%w: game is over (%s)", lichess.ErrRejected, b.status)
	}
	b.status = "resign"
	if len(b.moves)%2 == 0 {
		b.winner = "black"
	} else {
		b.winner = "white"
	}
	b.publishLocked()
	return nil
}

// Abort ends the game without a result. As on Lichess this is only allowed
// before both sides have moved.
func (b *LocalBackend) Abort(_ context.Context, gameID string) error {
	if err := b.checkID(gameID); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !lichess.IsOngoingStatus(b.status) {
		return fmt.Errorf("%w: game is over (%s)", lichess.ErrRejected, b.status)
	}
	if len(b.moves) >= 2 {
		return fmt.Errorf("%w: game can no longer be aborted", lichess.ErrRejected)
	}
	b.status = "aborted"
	b.publishLocked()
	return nil
}

// Moves returns the moves played so far.
func (b *LocalBackend) Moves() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.moves, " ")
}

// Status returns the current game status.
func (b *LocalBackend) Status() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

func (b *LocalBackend) checkID(gameID string) error {
	if gameID != b.gameID {
		return fmt.Errorf("%w: no local game %q", lichess.ErrRejected, gameID)
	}
	return nil
}

func (b *LocalBackend) stateLocked() *lichess.GameState {
	return &lichess.GameState{
		Moves:  strings.Join(b.moves, " "),
		Status: b.status,
		Winner: b.winner,
	}
}

func (b *LocalBackend) publishLocked() {
	st := b.stateLocked()
	for sub := range b.subs {
		select {
		case sub.events <- st:
		default:
			// A stalled reader resyncs from the next gameState, which carries all moves.
			logging.Warn("LocalBoard", "Stream reader is behind, dropping state update")
		}
	}
}

func (b *LocalBackend) unsubscribe(sub *localStream) {
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
}

type localStream struct {
	events    chan *lichess.GameState
	closed    chan struct{}
	closeOnce sync.Once
}

func (s *localStream) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}
