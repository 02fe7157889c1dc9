package lichess

import (
	"encoding/json"
	"fmt"
)

// Identity is the authenticated account, as returned by GET /account.
type Identity struct {
	ID           string          `json:"id"`
	Username     string          `json:"username"`
	Title        string          `json:"title,omitempty"`
	Profile      *Profile        `json:"profile,omitempty"`
	CreatedAt    int64           `json:"createdAt,omitempty"`
	SeenAt       int64           `json:"seenAt,omitempty"`
	Patron       bool            `json:"patron,omitempty"`
	Verified     bool            `json:"verified,omitempty"`
	Disabled     bool            `json:"disabled,omitempty"`
	TosViolation bool            `json:"tosViolation,omitempty"`
	Perfs        map[string]Perf `json:"perfs,omitempty"`
	PlayTime     *PlayTime       `json:"playTime,omitempty"`
}

type Profile struct {
	Country   string `json:"country,omitempty"`
	Location  string `json:"location,omitempty"`
	Bio       string `json:"bio,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Links     string `json:"links,omitempty"`
}

type Perf struct {
	Games  int  `json:"games"`
	Rating int  `json:"rating"`
	RD     int  `json:"rd"`
	Prog   int  `json:"prog"`
	Prov   bool `json:"prov,omitempty"`
}

type PlayTime struct {
	Total int64 `json:"total"`
	TV    int64 `json:"tv"`
}

// PlayedBy is one side of a board game: either a human account or the
// Lichess AI. The JSON is untagged; a user has an id, the AI has aiLevel.
type PlayedBy struct {
	User *Player
	AI   *AIPlayer
}

type Player struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Rating      int    `json:"rating,omitempty"`
	Provisional bool   `json:"provisional,omitempty"`
}

type AIPlayer struct {
	Level int `json:"aiLevel,omitempty"`
}

func (p *PlayedBy) UnmarshalJSON(data []byte) error {
	var raw struct {
		Player
		AILevel *int `json:"aiLevel"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID != "" {
		u := raw.Player
		*p = PlayedBy{User: &u}
		return nil
	}
	ai := &AIPlayer{}
	if raw.AILevel != nil {
		ai.Level = *raw.AILevel
	}
	*p = PlayedBy{AI: ai}
	return nil
}

func (p PlayedBy) MarshalJSON() ([]byte, error) {
	if p.User != nil {
		return json.Marshal(p.User)
	}
	if p.AI != nil {
		return json.Marshal(p.AI)
	}
	return []byte("{}"), nil
}

// IsAI reports whether this side is played by the Lichess AI.
func (p PlayedBy) IsAI() bool {
	return p.User == nil
}

// Is reports whether this side is the account with id. The AI is never anyone.
func (p PlayedBy) Is(id string) bool {
	return !p.IsAI() && id != "" && p.User.ID == id
}

// DisplayName is the player name, or "Stockfish level N" for the AI.
func (p PlayedBy) DisplayName() string {
	switch {
	case p.IsAI() && p.AI != nil && p.AI.Level > 0:
		return fmt.Sprintf("Stockfish level %d", p.AI.Level)
	case p.IsAI():
		return "Anonymous"
	case p.User.Title != "":
		return p.User.Title + " " + p.User.Name
	default:
		return p.User.Name
	}
}

type Variant struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Short string `json:"short,omitempty"`
}

type Clock struct {
	Initial   int64 `json:"initial"`
	Increment int64 `json:"increment"`
}

// GameFull is the first event of a game stream.
type GameFull struct {
	ID         string    `json:"id"`
	Variant    Variant   `json:"variant"`
	Speed      string    `json:"speed"`
	Perf       PerfInfo  `json:"perf"`
	Rated      bool      `json:"rated"`
	CreatedAt  int64     `json:"createdAt"`
	White      PlayedBy  `json:"white"`
	Black      PlayedBy  `json:"black"`
	InitialFen string    `json:"initialFen"`
	Clock      *Clock    `json:"clock,omitempty"`
	State      GameState `json:"state"`
}

// GameState carries the full move list and clocks after every move.
type GameState struct {
	Moves     string `json:"moves"` // space separated UCI moves from the start
	Wtime     int64  `json:"wtime"`
	Btime     int64  `json:"btime"`
	Winc      int64  `json:"winc"`
	Binc      int64  `json:"binc"`
	Wdraw     bool   `json:"wdraw,omitempty"`
	Bdraw     bool   `json:"bdraw,omitempty"`
	Wtakeback bool   `json:"wtakeback,omitempty"`
	Btakeback bool   `json:"btakeback,omitempty"`
	Status    string `json:"status"`
	Winner    string `json:"winner,omitempty"`
}

type ChatLine struct {
	Username string `json:"username"`
	Text     string `json:"text"`
	Room     string `json:"room"`
}

type OpponentGone struct {
	Gone              bool `json:"gone"`
	ClaimWinInSeconds int  `json:"claimWinInSeconds,omitempty"`
}

// Statuses while a game is still being played. Everything else is final.
const (
	StatusCreated = "created"
	StatusStarted = "started"
)

// IsOngoingStatus reports whether status means the game is not over.
func IsOngoingStatus(status string) bool {
	return status == StatusCreated || status == StatusStarted
}

// Event type discriminators.
const (
	TypeGameFull          = "gameFull"
	TypeGameState         = "gameState"
	TypeChatLine          = "chatLine"
	TypeOpponentGone      = "opponentGone"
	TypeGameStart         = "gameStart"
	TypeGameFinish        = "gameFinish"
	TypeChallenge         = "challenge"
	TypeChallengeCanceled = "challengeCanceled"
	TypeChallengeDeclined = "challengeDeclined"
)

// UnknownEventError is returned when a stream line has an unrecognised type.
type UnknownEventError struct {
	Type string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown event type %q", e.Type)
}

// GameEvent is one line of the board game stream. Value is one of
// *GameFull, *GameState, *ChatLine or *OpponentGone.
type GameEvent struct {
	Value any
}

func (e *GameEvent) UnmarshalJSON(data []byte) error {
	typ, err := peekType(data)
	if err != nil {
		return err
	}

	var v any
	switch typ {
	case TypeGameFull:
		v = &GameFull{}
	case TypeGameState:
		v = &GameState{}
	case TypeChatLine:
		v = &ChatLine{}
	case TypeOpponentGone:
		v = &OpponentGone{}
	default:
		return &UnknownEventError{Type: typ}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", typ, err)
	}
	e.Value = v
	return nil
}

func (e GameEvent) MarshalJSON() ([]byte, error) {
	var typ string
	switch e.Value.(type) {
	case *GameFull:
		typ = TypeGameFull
	case *GameState:
		typ = TypeGameState
	case *ChatLine:
		typ = TypeChatLine
	case *OpponentGone:
		typ = TypeOpponentGone
	default:
		return nil, fmt.Errorf("unsupported game event %T", e.Value)
	}
	return withType(typ, e.Value)
}

// GameInfo describes a game in the account feed and in /account/playing.
type GameInfo struct {
	FullID      string     `json:"fullId"`
	GameID      string     `json:"gameId"`
	FEN         string     `json:"fen"`
	Color       string     `json:"color"`
	LastMove    string     `json:"lastMove"`
	Source      string     `json:"source"`
	Status      GameStatus `json:"status"`
	Variant     Variant    `json:"variant"`
	Speed       string     `json:"speed"`
	Perf        string     `json:"perf"`
	Rated       bool       `json:"rated"`
	HasMoved    bool       `json:"hasMoved"`
	Opponent    Opponent   `json:"opponent"`
	IsMyTurn    bool       `json:"isMyTurn"`
	SecondsLeft int        `json:"secondsLeft,omitempty"`
	Winner      string     `json:"winner,omitempty"`
	RatingDiff  int        `json:"ratingDiff,omitempty"`
	Compat      Compat     `json:"compat"`
	ID          string     `json:"id"`
}

type GameStatus struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Opponent struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Rating   int    `json:"rating,omitempty"`
	AI       int    `json:"ai,omitempty"`
}

type Compat struct {
	Bot   bool `json:"bot"`
	Board bool `json:"board"`
}

type GameStart struct {
	Game GameInfo `json:"game"`
}

type GameFinish struct {
	Game GameInfo `json:"game"`
}

// Challenge is a challenge sent to or by the account.
type Challenge struct {
	ID               string         `json:"id"`
	URL              string         `json:"url"`
	Status           string         `json:"status"`
	Challenger       ChallengeUser  `json:"challenger"`
	DestUser         *ChallengeUser `json:"destUser,omitempty"`
	Variant          Variant        `json:"variant"`
	Rated            bool           `json:"rated"`
	Speed            string         `json:"speed"`
	TimeControl      TimeControl    `json:"timeControl"`
	Color            string         `json:"color"`
	FinalColor       string         `json:"finalColor,omitempty"`
	Perf             PerfInfo       `json:"perf"`
	Compat           *Compat        `json:"compat,omitempty"`
	DeclineReason    string         `json:"declineReason,omitempty"`
	DeclineReasonKey string         `json:"declineReasonKey,omitempty"`
}

type ChallengeUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Title  string `json:"title,omitempty"`
	Rating int    `json:"rating,omitempty"`
	Online bool   `json:"online,omitempty"`
}

type TimeControl struct {
	Type      string `json:"type"`
	Limit     int    `json:"limit,omitempty"`
	Increment int    `json:"increment,omitempty"`
	Show      string `json:"show,omitempty"`
}

type PerfInfo struct {
	Icon string `json:"icon,omitempty"`
	Name string `json:"name"`
}

type ChallengeEvent struct {
	Challenge Challenge `json:"challenge"`
}

type ChallengeCanceled struct {
	Challenge Challenge `json:"challenge"`
}

type ChallengeDeclined struct {
	Challenge Challenge `json:"challenge"`
}

// AccountEvent is one line of the account event stream. Value is one of
// *GameStart, *GameFinish, *ChallengeEvent, *ChallengeCanceled or
// *ChallengeDeclined.
type AccountEvent struct {
	Value any
}

func (e *AccountEvent) UnmarshalJSON(data []byte) error {
	typ, err := peekType(data)
	if err != nil {
		return err
	}

	var v any
	switch typ {
	case TypeGameStart:
		v = &GameStart{}
	case TypeGameFinish:
		v = &GameFinish{}
	case TypeChallenge:
		v = &ChallengeEvent{}
	case TypeChallengeCanceled:
		v = &ChallengeCanceled{}
	case TypeChallengeDeclined:
		v = &ChallengeDeclined{}
	default:
		return &UnknownEventError{Type: typ}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", typ, err)
	}
	e.Value = v
	return nil
}

// DailyPuzzle is the response of GET /puzzle/daily.
type DailyPuzzle struct {
	Game   PuzzleGame `json:"game"`
	Puzzle Puzzle     `json:"puzzle"`
}

type PuzzleGame struct {
	ID      string         `json:"id"`
	Perf    PerfKey        `json:"perf"`
	Rated   bool           `json:"rated"`
	Players []PuzzlePlayer `json:"players"`
	PGN     string         `json:"pgn"`
	Clock   string         `json:"clock"`
}

type PerfKey struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type PuzzlePlayer struct {
	Name   string `json:"name"`
	ID     string `json:"id"`
	Color  string `json:"color"`
	Rating int    `json:"rating"`
	Flair  string `json:"flair,omitempty"`
}

type Puzzle struct {
	ID         string   `json:"id"`
	Rating     int      `json:"rating"`
	Plays      int      `json:"plays"`
	Solution   []string `json:"solution"`
	Themes     []string `json:"themes"`
	InitialPly int      `json:"initialPly"`
}

func peekType(data []byte) (string, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return "", err
	}
	if head.Type == "" {
		return "", &UnknownEventError{}
	}
	return head.Type, nil
}

// withType marshals v and prepends the "type" discriminator.
func withType(typ string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	t, _ := json.Marshal(typ)
	fields["type"] = t
	return json.Marshal(fields)
}
