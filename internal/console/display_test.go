package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"kindlechess/internal/game"
	"kindlechess/internal/lichess"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
)

func TestDisplay_Update(t *testing.T) {
	text.DisableColors()
	defer text.EnableColors()

	var buf bytes.Buffer
	d := NewDisplay(&buf)

	snap := game.Snapshot{
		State:     game.StateActive,
		Side:      game.SideWhite,
		White:     lichess.PlayedBy{User: &lichess.Player{ID: "me", Name: "Me"}},
		Black:     lichess.PlayedBy{AI: &lichess.AIPlayer{Level: 3}},
		Status:    lichess.StatusStarted,
		LocalTurn: true,
	}
	d.Update(snap)
	d.Update(snap)

	snap.Moves = "e2e4"
	snap.LocalTurn = false
	d.Update(snap)

	snap.Status = "mate"
	snap.State = game.StateTerminal
	d.Update(snap)

	want := strings.Join([]string{
		"Me vs Stockfish level 3 (you play white)",
		"Your move",
		"Move 1: e2e4",
		"Waiting for opponent",
		"Move 1: e2e4",
		"Game over: mate",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestDisplay_Messages(t *testing.T) {
	text.DisableColors()
	defer text.EnableColors()

	var buf bytes.Buffer
	d := NewDisplay(&buf)
	d.Chat(&lichess.ChatLine{Username: "bob", Text: "gl hf", Room: "player"})
	d.Chat(&lichess.ChatLine{Username: "eve", Text: "two\nlines", Room: "spectator"})
	d.MoveError(errors.New("illegal move"))
	d.Notice("Connection lost")

	out := buf.String()
	assert.Contains(t, out, "[player] bob: gl hf")
	assert.Contains(t, out, "[spectator] eve: two lines\n")
	assert.Contains(t, out, "✗ illegal move")
	assert.Contains(t, out, "Connection lost")
}

func TestTurnIndicator(t *testing.T) {
	text.DisableColors()
	defer text.EnableColors()

	assert.Equal(t, "Watching", TurnIndicator(game.Snapshot{State: game.StateActive, Side: game.SideNone}))
	assert.Equal(t, "Game over: opponent left", TurnIndicator(game.Snapshot{State: game.StateTerminal, Status: lichess.StatusStarted}))
}
