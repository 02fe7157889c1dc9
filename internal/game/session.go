package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"kindlechess/internal/lichess"
	"kindlechess/internal/ndjson"
	"kindlechess/pkg/logging"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrMoveAttemptsExhausted ends the session when every attempt at the
	// current move was rejected. It is shown on the display and returned by Run.
	ErrMoveAttemptsExhausted = errors.New("move attempts exhausted")

	// ErrSessionTerminal is returned by Run on a session whose game is over.
	ErrSessionTerminal = errors.New("game session is over")

	errAlreadyRunning = errors.New("game session is already running")
)

// State is the lifecycle of a session.
type State int

const (
	StateUninitialized State = iota
	StateActive
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Side is the color the local player controls.
type Side int

const (
	// SideNone means the local account plays neither color and only watches.
	SideNone Side = iota
	SideWhite
	SideBlack
	// SideBoth is a hot-seat game where the local player moves for both colors.
	SideBoth
)

func (s Side) String() string {
	switch s {
	case SideWhite:
		return "white"
	case SideBlack:
		return "black"
	case SideBoth:
		return "both"
	default:
		return "spectator"
	}
}

func resolveSide(white, black lichess.PlayedBy, localID string) Side {
	w, b := white.Is(localID), black.Is(localID)
	switch {
	case w && b:
		return SideBoth
	case w:
		return SideWhite
	case b:
		return SideBlack
	default:
		return SideNone
	}
}

func turnFor(side Side, moves string) bool {
	switch side {
	case SideWhite:
		return IsLocalTurn(moves, true)
	case SideBlack:
		return IsLocalTurn(moves, false)
	case SideBoth:
		return true
	default:
		return false
	}
}

// Snapshot is a copy of the session state at one point in time.
type Snapshot struct {
	GameID    string
	State     State
	Side      Side
	White     lichess.PlayedBy
	Black     lichess.PlayedBy
	Moves     string
	Status    string
	LocalTurn bool
}

// MoveCount returns the number of moves played.
func (s Snapshot) MoveCount() int {
	return MoveCount(s.Moves)
}

// Config bounds retries. Zero backoffs retry immediately.
type Config struct {
	MaxMoveAttempts  int
	MoveBackoff      time.Duration
	MaxReconnects    int // 0 ends the session when the stream closes
	ReconnectBackoff time.Duration
}

// DefaultConfig returns the retry limits used when none are configured.
func DefaultConfig() Config {
	return Config{
		MaxMoveAttempts:  5,
		MoveBackoff:      500 * time.Millisecond,
		MaxReconnects:    5,
		ReconnectBackoff: time.Second,
	}
}

// Session plays one game: it follows the game stream, works out whose
// turn it is and asks the MoveSource for a move when it is ours.
//
// Two goroutines run while Run is active. The stream loop is the only
// writer of the game fields; the mover waits for the player and submits
// moves so that reading the stream never stalls on human input.
type Session struct {
	backend Backend
	gameID  string
	localID string
	source  MoveSource
	display Display
	cfg     Config

	mu          sync.Mutex
	state       State
	side        Side
	white       lichess.PlayedBy
	black       lichess.PlayedBy
	moves       string
	status      string
	localTurn   bool
	outstanding *moveRequest
	played      int // move count of the last accepted submission, -1 if none
	running     bool
	cancelled   bool
	cancel      context.CancelFunc
}

// moveRequest asks the mover for the move at position count. cancel is
// called when the position moves on or the game ends.
type moveRequest struct {
	ctx    context.Context
	cancel context.CancelFunc
	count  int
}

// NewSession creates a session for gameID. identity is the local account;
// nil makes the session a spectator. display may be nil.
func NewSession(backend Backend, gameID string, identity *lichess.Identity, source MoveSource, display Display, cfg Config) *Session {
	if cfg.MaxMoveAttempts < 1 {
		cfg.MaxMoveAttempts = 1
	}
	if cfg.MaxReconnects < 0 {
		cfg.MaxReconnects = 0
	}
	if display == nil {
		display = nopDisplay{}
	}
	s := &Session{
		backend: backend,
		gameID:  gameID,
		source:  source,
		display: display,
		cfg:     cfg,
		played:  -1,
	}
	if identity != nil {
		s.localID = identity.ID
	}
	return s
}

// GameID returns the game this session follows.
func (s *Session) GameID() string {
	return s.gameID
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cancel stops a running session; Run then returns nil. Calling Cancel
// before Run makes Run return immediately.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = true
	if s.cancel != nil {
		s.cancel()
	}
}

// Run follows the game until it ends, the session is cancelled or the
// stream cannot be reopened. A finished game returns nil; a lost stream
// returns an error wrapping ndjson.ErrConnectionClosed and a move that was
// rejected too often one wrapping ErrMoveAttemptsExhausted.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateTerminal {
		s.mu.Unlock()
		return ErrSessionTerminal
	}
	if s.running {
		s.mu.Unlock()
		return errAlreadyRunning
	}
	s.running = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	if s.cancelled {
		cancel()
	}
	s.mu.Unlock()
	defer cancel()

	logging.Info("GameSession", "Starting session for game %s", s.gameID)

	requests := make(chan *moveRequest, 1)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return s.streamLoop(gctx, requests)
	})
	g.Go(func() error {
		return s.mover(gctx, requests)
	})
	if q, ok := s.source.(Quitter); ok {
		g.Go(func() error {
			select {
			case <-q.Quit():
				logging.Info("GameSession", "Player left game %s", s.gameID)
				s.Cancel()
			case <-gctx.Done():
			}
			return nil
		})
	}
	err := g.Wait()

	s.mu.Lock()
	s.running = false
	s.cancel = nil
	cancelled := s.cancelled
	s.dropOutstandingLocked()
	s.mu.Unlock()

	if cancelled && errors.Is(err, context.Canceled) {
		logging.Info("GameSession", "Session for game %s cancelled", s.gameID)
		return nil
	}
	if err != nil {
		logging.Error("GameSession", err, "Session for game %s ended", s.gameID)
	}
	return err
}

func (s *Session) streamLoop(ctx context.Context, requests chan<- *moveRequest) error {
	b := newBackOff(s.cfg.ReconnectBackoff)
	failures := 0

	for {
		progressed, err := s.consume(ctx, requests)

		if s.State() == StateTerminal {
			snap := s.Snapshot()
			logging.Info("GameSession", "Game %s is over (%s)", s.gameID, snap.Status)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// The server answered: the game does not exist or the token is no good.
		if errors.Is(err, lichess.ErrRejected) || errors.Is(err, lichess.ErrUnauthorized) {
			return fmt.Errorf("game %s: %w", s.gameID, err)
		}

		if progressed {
			failures = 0
			b.Reset()
		}
		if failures >= s.cfg.MaxReconnects {
			if !errors.Is(err, ndjson.ErrConnectionClosed) {
				err = fmt.Errorf("%w: %w", ndjson.ErrConnectionClosed, err)
			}
			return fmt.Errorf("game %s: %w", s.gameID, err)
		}
		failures++

		wait := b.NextBackOff()
		logging.Warn("GameSession", "Stream for %s lost (%v), reconnecting in %s (%d/%d)",
			s.gameID, err, wait, failures, s.cfg.MaxReconnects)
		s.display.Notice("Connection lost, reconnecting...")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// consume reads one stream connection to its end. progressed reports
// whether any event arrived.
func (s *Session) consume(ctx context.Context, requests chan<- *moveRequest) (progressed bool, err error) {
	events, closer, err := s.backend.StreamGame(ctx, s.gameID)
	if err != nil {
		return false, err
	}
	defer closer.Close()

	for ev, err := range events {
		if err != nil {
			if errors.Is(err, ndjson.ErrTransientParse) {
				logging.Warn("GameSession", "Skipping unreadable event: %v", err)
				continue
			}
			return progressed, err
		}
		progressed = true

		s.apply(ev)
		s.reconcile(ctx, requests)
		if s.State() == StateTerminal {
			return progressed, nil
		}
	}
	return progressed, ndjson.ErrConnectionClosed
}

func (s *Session) apply(ev lichess.GameEvent) {
	switch v := ev.Value.(type) {
	case *lichess.GameFull:
		s.applyFull(v)
	case *lichess.GameState:
		s.applyState(v)
	case *lichess.ChatLine:
		logging.Info("GameSession", "[%s] %s: %s", v.Room, v.Username, v.Text)
		s.display.Chat(v)
	case *lichess.OpponentGone:
		// Any opponentGone ends the session, whatever its gone flag says.
		s.mu.Lock()
		s.state = StateTerminal
		s.dropOutstandingLocked()
		snap := s.snapshotLocked()
		s.mu.Unlock()
		logging.Info("GameSession", "Opponent left game %s (gone=%t, claim win in %ds)", s.gameID, v.Gone, v.ClaimWinInSeconds)
		s.display.Notice("Your opponent left the game")
		s.display.Update(snap)
	}
}

func (s *Session) applyFull(full *lichess.GameFull) {
	s.mu.Lock()
	if s.state == StateTerminal {
		s.mu.Unlock()
		return
	}
	s.white, s.black = full.White, full.Black
	if s.state == StateUninitialized {
		s.side = resolveSide(full.White, full.Black, s.localID)
		s.state = StateActive
		logging.Info("GameSession", "Game %s: %s vs %s, playing %s",
			s.gameID, full.White.DisplayName(), full.Black.DisplayName(), s.side)
	} else if MoveCount(full.State.Moves) != MoveCount(s.moves) {
		logging.Info("GameSession", "Resumed game %s at move %d (was %d)",
			s.gameID, MoveCount(full.State.Moves), MoveCount(s.moves))
	}
	s.setPositionLocked(full.State.Moves, full.State.Status)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.display.Update(snap)
}

func (s *Session) applyState(st *lichess.GameState) {
	s.mu.Lock()
	if s.state != StateActive {
		state := s.state
		s.mu.Unlock()
		logging.Debug("GameSession", "Ignoring gameState while %s", state)
		return
	}
	s.setPositionLocked(st.Moves, st.Status)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.display.Update(snap)
}

func (s *Session) setPositionLocked(moves, status string) {
	s.moves = moves
	s.status = status
	s.localTurn = turnFor(s.side, moves)
	if !lichess.IsOngoingStatus(status) {
		s.state = StateTerminal
		s.dropOutstandingLocked()
	}
}

// reconcile hands the mover a request when it is our turn and nobody is
// working on this position yet.
func (s *Session) reconcile(ctx context.Context, requests chan<- *moveRequest) {
	s.mu.Lock()
	count := MoveCount(s.moves)
	want := s.state == StateActive && s.localTurn && count != s.played
	if o := s.outstanding; o != nil && (!want || o.count != count) {
		logging.Debug("GameSession", "Position moved on, dropping request for move %d", o.count+1)
		s.dropOutstandingLocked()
	}
	var req *moveRequest
	if want && s.outstanding == nil {
		rctx, rcancel := context.WithCancel(ctx)
		req = &moveRequest{ctx: rctx, cancel: rcancel, count: count}
		s.outstanding = req
	}
	s.mu.Unlock()

	if req == nil {
		return
	}
	select {
	case requests <- req:
	case <-ctx.Done():
	}
}

func (s *Session) dropOutstandingLocked() {
	if s.outstanding != nil {
		s.outstanding.cancel()
		s.outstanding = nil
	}
}

func (s *Session) mover(ctx context.Context, requests <-chan *moveRequest) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-requests:
			if err := s.play(req); err != nil {
				return err
			}
		}
	}
}

// play obtains and submits one move, retrying rejected ones with backoff.
func (s *Session) play(req *moveRequest) error {
	accepted := false
	defer func() { s.finish(req, accepted) }()

	b := newBackOff(s.cfg.MoveBackoff)
	var lastErr error

	for attempt := 1; attempt <= s.cfg.MaxMoveAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-req.ctx.Done():
				return nil
			case <-time.After(b.NextBackOff()):
			}
		}

		action, err := s.source.NextAction(req.ctx, s.Snapshot())
		if err != nil {
			if req.ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, ErrQuit) {
				logging.Info("GameSession", "Player left game %s", s.gameID)
				s.Cancel()
				return nil
			}
			return fmt.Errorf("move source: %w", err)
		}
		if req.ctx.Err() != nil {
			return nil
		}

		err = s.perform(req.ctx, action)
		if err == nil {
			accepted = true
			return nil
		}
		if req.ctx.Err() != nil {
			return nil
		}

		lastErr = err
		logging.Warn("GameSession", "%s failed (attempt %d/%d): %v", action.Kind, attempt, s.cfg.MaxMoveAttempts, err)
		s.display.MoveError(err)
		if errors.Is(err, lichess.ErrUnauthorized) {
			return fmt.Errorf("game %s: %w", s.gameID, err)
		}
	}

	err := fmt.Errorf("game %s: %w after %d attempts: %w", s.gameID, ErrMoveAttemptsExhausted, s.cfg.MaxMoveAttempts, lastErr)
	logging.Error("GameSession", err, "Giving up on move %d of game %s", req.count+1, s.gameID)
	s.display.MoveError(err)
	return err
}

func (s *Session) perform(ctx context.Context, action Action) error {
	switch action.Kind {
	case ActionMove:
		return s.backend.Move(ctx, s.gameID, action.Move)
	case ActionResign:
		logging.Info("GameSession", "Resigning game %s", s.gameID)
		return s.backend.Resign(ctx, s.gameID)
	case ActionAbort:
		logging.Info("GameSession", "Aborting game %s", s.gameID)
		return s.backend.Abort(ctx, s.gameID)
	default:
		return fmt.Errorf("unknown action %d", action.Kind)
	}
}

func (s *Session) finish(req *moveRequest, accepted bool) {
	req.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if accepted {
		s.played = req.count
	}
	if s.outstanding == req {
		s.outstanding = nil
	}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		GameID:    s.gameID,
		State:     s.state,
		Side:      s.side,
		White:     s.white,
		Black:     s.black,
		Moves:     s.moves,
		Status:    s.status,
		LocalTurn: s.localTurn,
	}
}

func newBackOff(initial time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	if b.MaxInterval < initial {
		b.MaxInterval = initial
	}
	b.Reset()
	return b
}

type nopDisplay struct{}

func (nopDisplay) Update(Snapshot)        {}
func (nopDisplay) Chat(*lichess.ChatLine) {}
func (nopDisplay) MoveError(error)        {}
func (nopDisplay) Notice(string)          {}
