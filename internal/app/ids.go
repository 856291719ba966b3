package app

import "github.com/google/uuid"

// aiSeat is the player id recorded for the engine's seat.
const aiSeat = "engine"

// newGameID generates a UUIDv4 string for a game.
func newGameID() string {
	return uuid.NewString()
}
