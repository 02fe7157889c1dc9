// Package game runs a single game session.
//
// A Session follows the game stream of a Backend. The first gameFull event
// decides which color the local account plays; every later gameState
// recomputes whose turn it is from the move list alone (see IsLocalTurn).
// When it is the local player's turn the session asks its MoveSource for an
// Action and submits it, retrying rejected moves a bounded number of times.
//
// The session ends when the game reaches a final status, the opponent
// leaves, the session is cancelled, or the stream is lost and cannot be
// reopened within Config.MaxReconnects attempts.
//
// OnlineBackend plays on Lichess. LocalBackend keeps a hot-seat board in
// memory for offline play.
package game
