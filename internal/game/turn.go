package game

import "strings"

// MoveCount returns the number of moves in a space separated UCI move list.
func MoveCount(moves string) int {
	return len(strings.Fields(moves))
}

// IsLocalTurn derives whose turn it is from the move list alone. White moves
// when an even number of moves have been played.
func IsLocalTurn(moves string, localIsWhite bool) bool {
	whiteToMove := MoveCount(moves)%2 == 0
	return whiteToMove == localIsWhite
}
