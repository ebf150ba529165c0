package communication

import "errors"

// ErrEmptyInput is returned for a blank input line. It is not fatal: the
// caller skips the line and keeps reading.
var ErrEmptyInput = errors.New("empty input line")

// Communicator abstracts the channel a player receives positions from and
// sends its moves to.
type Communicator interface {
	// ReceivePosition blocks for the next position. It returns io.EOF once
	// the input is exhausted.
	ReceivePosition() (string, error)
	// SendMove delivers a single move and flushes it.
	SendMove(move string) error
}
