package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMessages(t *testing.T) {
	assert.Equal(t, "Error: boom", FormatError(errors.New("boom")))
	assert.Equal(t, "✓ Logged in", FormatSuccess("Logged in"))
	assert.Equal(t, "⚠ Opponent left", FormatWarning("Opponent left"))
}

func TestProgress_Quiet(t *testing.T) {
	var buf bytes.Buffer
	p := StartProgress(&buf, true, "Waiting")
	p.Fail("failed")
	p.Stop()
	assert.Empty(t, buf.String())
}

func TestNewTable_Plain(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, true, "Game", "Color", "Opponent")
	tbl.AppendRow([]any{"AbCdEfGh", "white", Dash("")})
	tbl.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if assert.Len(t, lines, 2) {
		assert.True(t, strings.HasPrefix(lines[0], "GAME"))
		assert.Contains(t, lines[1], "AbCdEfGh")
		assert.Contains(t, lines[1], "-")
	}
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestNewTable_Styled(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, false, "Game")
	tbl.AppendRow([]any{"AbCdEfGh"})
	tbl.Render()

	assert.Contains(t, buf.String(), "╭")
	assert.Contains(t, buf.String(), "AbCdEfGh")
}
