package engine

import (
	"chessmcts/communication/client"
	"chessmcts/game"
)

// NewRemoteEngine plays a game between two agent servers. A zero iteration
// count leaves the search budget to each server.
func NewRemoteEngine(rules game.Rules, whiteURL, blackURL string, iterations int, start game.Position, maxTurns int) *LocalEngine {
	return NewLocalEngine(
		rules,
		client.NewRemoteAgent(whiteURL, iterations),
		client.NewRemoteAgent(blackURL, iterations),
		start,
		maxTurns,
	)
}
