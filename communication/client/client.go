package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chessmcts/agent"
	"chessmcts/experiments/metrics"
	"chessmcts/game"
)

const requestTimeout = 5 * time.Minute

// RemoteAgent asks an agent server for moves.
type RemoteAgent struct {
	serverURL  string
	iterations int
	client     *http.Client
}

// NewRemoteAgent returns an agent backed by the server at serverURL. A zero
// iteration count leaves the budget to the server.
func NewRemoteAgent(serverURL string, iterations int) *RemoteAgent {
	return &RemoteAgent{
		serverURL:  strings.TrimRight(serverURL, "/"),
		iterations: iterations,
		client:     &http.Client{Timeout: requestTimeout},
	}
}

var _ agent.Agent = (*RemoteAgent)(nil)

func (ra *RemoteAgent) FindMove(ctx context.Context, position game.Position) (game.Move, metrics.SearchMetric, error) {
	body, err := json.Marshal(agent.FindMoveRequest{
		Position:   string(position),
		Iterations: ra.iterations,
	})
	if err != nil {
		return game.NoMove, metrics.SearchMetric{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ra.serverURL+"/findmove", bytes.NewReader(body))
	if err != nil {
		return game.NoMove, metrics.SearchMetric{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ra.client.Do(req)
	if err != nil {
		return game.NoMove, metrics.SearchMetric{}, fmt.Errorf("failed to reach agent server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		out, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return game.NoMove, metrics.SearchMetric{}, fmt.Errorf("agent server returned status %d: %s", resp.StatusCode, bytes.TrimSpace(out))
	}

	var payload agent.FindMoveResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return game.NoMove, metrics.SearchMetric{}, fmt.Errorf("failed to decode move: %w", err)
	}
	return game.Move(payload.Move), payload.Metric, nil
}
