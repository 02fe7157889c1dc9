package lichess

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayedBy_Unmarshal(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		wantAI   bool
		wantID   string
		wantName string
	}{
		{"user", `{"id":"me","name":"Me","rating":1500}`, false, "me", "Me"},
		{"titled user", `{"id":"gm","name":"Magnus","title":"GM","rating":2800}`, false, "gm", "GM Magnus"},
		{"ai", `{"aiLevel":4}`, true, "", "Stockfish level 4"},
		{"anonymous", `{}`, true, "", "Anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p PlayedBy
			require.NoError(t, json.Unmarshal([]byte(tt.json), &p))
			assert.Equal(t, tt.wantAI, p.IsAI())
			assert.Equal(t, tt.wantName, p.DisplayName())
			if tt.wantID != "" {
				assert.True(t, p.Is(tt.wantID))
			}
		})
	}
}

func TestPlayedBy_AINeverMatches(t *testing.T) {
	var p PlayedBy
	require.NoError(t, json.Unmarshal([]byte(`{"aiLevel":1}`), &p))
	assert.False(t, p.Is(""))
	assert.False(t, p.Is("anyone"))

	var u PlayedBy
	require.NoError(t, json.Unmarshal([]byte(`{"id":"me","name":"Me"}`), &u))
	assert.False(t, u.Is(""))
	assert.False(t, u.Is("someone-else"))
}

func TestPlayedBy_ZeroValue(t *testing.T) {
	var p PlayedBy
	assert.True(t, p.IsAI())
	assert.False(t, p.Is("me"))
	assert.Equal(t, "Anonymous", p.DisplayName())

	withAI := PlayedBy{AI: &AIPlayer{Level: 6}}
	assert.Equal(t, "Stockfish level 6", withAI.DisplayName())
}

func TestGameEvent_Decode(t *testing.T) {
	var ev GameEvent
	require.NoError(t, json.Unmarshal([]byte(`{"type":"gameFull","id":"x","white":{"aiLevel":2},"black":{"id":"me","name":"Me"},"state":{"type":"gameState","moves":"e2e4","status":"started"}}`), &ev))

	full, ok := ev.Value.(*GameFull)
	require.True(t, ok)
	assert.True(t, full.White.IsAI())
	assert.True(t, full.Black.Is("me"))
	assert.Equal(t, "e2e4", full.State.Moves)
}

func TestGameEvent_UnknownAndMissingType(t *testing.T) {
	var ev GameEvent

	err := json.Unmarshal([]byte(`{"type":"gameStart"}`), &ev)
	var unknown *UnknownEventError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "gameStart", unknown.Type)

	err = json.Unmarshal([]byte(`{"moves":"e2e4"}`), &ev)
	assert.True(t, errors.As(err, &unknown))

	err = json.Unmarshal([]byte(`{"type":"gameState","wtime":"soon"}`), &ev)
	assert.Error(t, err)
}

func TestGameEvent_MarshalRoundTrip(t *testing.T) {
	in := GameEvent{Value: &GameState{Moves: "e2e4 e7e5", Status: StatusStarted}}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"gameState"`)

	var out GameEvent
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in.Value, out.Value)

	_, err = json.Marshal(GameEvent{Value: 42})
	assert.Error(t, err)
}

func TestIsOngoingStatus(t *testing.T) {
	for _, s := range []string{"created", "started"} {
		assert.True(t, IsOngoingStatus(s), s)
	}
	for _, s := range []string{"aborted", "mate", "resign", "stalemate", "timeout", "draw", "outoftime", "cheat", "noStart", "unknownFinish", "variantEnd", ""} {
		assert.False(t, IsOngoingStatus(s), s)
	}
}
