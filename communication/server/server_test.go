package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chessmcts/agent"
	"chessmcts/game"
	"chessmcts/searcher"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	rules, err := game.NewChessRules()
	require.NoError(t, err)
	t.Cleanup(rules.Close)

	agentServer, err := NewAgentServer(rules, 30, 100, prometheus.NewRegistry(), searcher.WithMaxDepth(10))
	require.NoError(t, err)
	ts := httptest.NewServer(agentServer.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func findMove(t *testing.T, ts *httptest.Server, body string) (*http.Response, agent.FindMoveResponse) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/findmove", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload agent.FindMoveResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	}
	return resp, payload
}

func TestAgentServer(t *testing.T) {
	ts := newTestServer(t)

	t.Run("finds a move", func(t *testing.T) {
		resp, payload := findMove(t, ts, `{"position": "k7/8/1K6/8/8/8/8/7R b - - 0 1"}`)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "a8b8", payload.Move)
		require.Equal(t, 30, payload.Metric.Iterations, "Server default budget should apply")
	})

	t.Run("request can override the budget", func(t *testing.T) {
		resp, payload := findMove(t, ts, `{"position": "8/8/4k3/8/4K3/8/8/8 w - - 0 1", "iterations": 12}`)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, 12, payload.Metric.Episodes)
	})

	t.Run("budget above the limit is rejected", func(t *testing.T) {
		resp, _ := findMove(t, ts, `{"position": "8/8/4k3/8/4K3/8/8/8 w - - 0 1", "iterations": 1000000000}`)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("lost position has no move", func(t *testing.T) {
		resp, payload := findMove(t, ts, `{"position": "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"}`)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Empty(t, payload.Move)
	})

	t.Run("rejects malformed requests", func(t *testing.T) {
		for _, body := range []string{`not json`, `{"position": ""}`, `{"position": "garbage"}`} {
			resp, _ := findMove(t, ts, body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %q", body)
		}
	})

	t.Run("health check", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("exposes search metrics", func(t *testing.T) {
		findMove(t, ts, `{"position": "k7/8/1K6/8/8/8/8/7R b - - 0 1"}`)

		resp, err := http.Get(ts.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		require.Contains(t, string(body), "chessmcts_search_completed_total")
		require.Contains(t, string(body), "chessmcts_search_episodes_total")
	})

	t.Run("only POST finds moves", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/findmove")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}
