// Package console connects a game session to a terminal: MoveSource reads
// moves with readline and Display prints the game as it progresses.
package console
