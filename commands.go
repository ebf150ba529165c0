package main

import (
	"fmt"
	"os"

	"chessmcts/agent"
	"chessmcts/bootstrap"
	"chessmcts/communication/server"
	"chessmcts/communication/stream"
	"chessmcts/engine"
	"chessmcts/experiments"
	"chessmcts/experiments/metrics"
	"chessmcts/game"
	"chessmcts/meta"
	"chessmcts/player"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	v       = bootstrap.NewViper()
	cfg     *bootstrap.Config

	// arena flags
	whiteIterations int
	blackIterations int
	whiteURL        string
	blackURL        string
	startFEN        string
	temperature     float64
	arenaGames      int

	rootCmd = &cobra.Command{
		Use:   "chessmcts",
		Short: "A Monte Carlo Tree Search chess agent",
		Long: `chessmcts picks chess moves with Monte Carlo Tree Search. It can answer
positions on stdin, serve moves over HTTP, or pit agents against each other.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := bootstrap.Setup(v, cfgFile)
			if err != nil {
				return err
			}
			cfg = c
			return setupLogging(cfg.LogLevel)
		},
	}

	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Read one FEN per line on stdin and write one UCI move per line on stdout",
		Args:  cobra.NoArgs,
		RunE:  runPlay,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve moves over HTTP on POST /findmove",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	arenaCmd = &cobra.Command{
		Use:   "arena",
		Short: "Play games between two agents, locally or against agent servers",
		Args:  cobra.NoArgs,
		RunE:  runArena,
	}

	experimentCmd = &cobra.Command{
		Use:       "experiment [iterations|cutoff|expansion|throughput]",
		Short:     "Run an experiment and store its CSV and YAML records",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"iterations", "cutoff", "expansion", "throughput"},
		RunE:      runExperiment,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml)")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.Uint64("seed", meta.SEED, "seed of the search random source")
	flags.Int("iterations", meta.ITERATIONS, "search iterations per move")
	flags.Int("branching-factor", meta.BRANCHING_FACTOR, "root candidate moves, 0 for all")
	flags.Int("max-depth", meta.MAX_DEPTH, "rollout depth limit")
	flags.Bool("full-expansion", false, "expand every move of a node at once")
	bindFlags(map[string]string{
		"log_level":        "log-level",
		"seed":             "seed",
		"iterations":       "iterations",
		"branching_factor": "branching-factor",
		"max_depth":        "max-depth",
		"full_expansion":   "full-expansion",
	}, rootCmd)

	serveCmd.Flags().String("listen", ":8080", "listen address")
	serveCmd.Flags().Int("max-iterations", meta.MAX_ITERATIONS, "largest search budget a request may ask for")
	bindFlags(map[string]string{"listen_addr": "listen", "max_iterations": "max-iterations"}, serveCmd)

	arenaCmd.Flags().IntVar(&whiteIterations, "white-iterations", 0, "white search budget, defaults to --iterations")
	arenaCmd.Flags().IntVar(&blackIterations, "black-iterations", 0, "black search budget, defaults to --iterations")
	arenaCmd.Flags().StringVar(&whiteURL, "white-url", "", "agent server playing white")
	arenaCmd.Flags().StringVar(&blackURL, "black-url", "", "agent server playing black")
	arenaCmd.Flags().StringVar(&startFEN, "fen", string(game.StartPosition), "starting position")
	arenaCmd.Flags().Float64Var(&temperature, "temperature", 0, "sample moves from visit counts, 0 plays the most visited")
	arenaCmd.Flags().IntVar(&arenaGames, "games", 1, "number of games")
	arenaCmd.Flags().Int("max-turns", meta.MAX_TURNS, "plies before a game is drawn")
	bindFlags(map[string]string{"max_turns": "max-turns"}, arenaCmd)

	experimentCmd.Flags().Int("games", 10, "games per match up")
	experimentCmd.Flags().String("out", "results", "output directory")
	bindFlags(map[string]string{"games": "games", "output_dir": "out"}, experimentCmd)

	rootCmd.AddCommand(playCmd, serveCmd, arenaCmd, experimentCmd)
}

func bindFlags(keys map[string]string, cmd *cobra.Command) {
	for key, flag := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			f = cmd.PersistentFlags().Lookup(flag)
		}
		if err := v.BindPFlag(key, f); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", flag, err))
		}
	}
}

func newRules() (*game.ChessRules, error) {
	rules, err := game.NewChessRules(cfg.ChessOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to set up chess rules: %w", err)
	}
	return rules, nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	rules, err := newRules()
	if err != nil {
		return err
	}
	defer rules.Close()

	a := agent.NewEvaluationAgent(rules, cfg.Iterations, cfg.SearchOptions()...)
	p := player.NewPlayer(stream.NewStreamCommunicator(os.Stdin, os.Stdout), a, rules)
	return p.Play(cmd.Context())
}

func runServe(cmd *cobra.Command, args []string) error {
	rules, err := newRules()
	if err != nil {
		return err
	}
	defer rules.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	agentServer, err := server.NewAgentServer(rules, cfg.Iterations, cfg.MaxIterations, registry, cfg.SearchOptions()...)
	if err != nil {
		return err
	}
	return agentServer.ListenAndServe(cmd.Context(), cfg.ListenAddr)
}

func runArena(cmd *cobra.Command, args []string) error {
	rules, err := newRules()
	if err != nil {
		return err
	}
	defer rules.Close()

	start, err := rules.ParsePosition(startFEN)
	if err != nil {
		return err
	}

	score := map[string]int{}
	for i := 0; i < arenaGames; i++ {
		e := arenaEngine(rules, start, uint64(i))
		gameMetric, moveMetrics, err := e.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("game %d: %w", i+1, err)
		}
		winner := gameMetric.Winner
		if winner == "" {
			winner = "draw"
		}
		score[winner]++
		log.Info().Msgf("game %d of %d: %s by %s after %d moves (%d searches)", i+1, arenaGames, winner, gameMetric.Termination, gameMetric.TotalMoves, len(moveMetrics))
	}
	log.Info().Msgf("final score: white %d, black %d, draws %d", score[engine.White], score[engine.Black], score["draw"])
	return nil
}

func arenaEngine(rules *game.ChessRules, start game.Position, index uint64) engine.Engine {
	if whiteURL != "" && blackURL != "" {
		return engine.NewRemoteEngine(rules, whiteURL, blackURL, 0, start, cfg.MaxTurns)
	}

	white := arenaAgent(rules, whiteIterations, cfg.Seed+2*index)
	black := arenaAgent(rules, blackIterations, cfg.Seed+2*index+1)
	return engine.NewLocalEngine(rules, white, black, start, cfg.MaxTurns)
}

func arenaAgent(rules *game.ChessRules, iterations int, seed uint64) agent.Agent {
	if iterations <= 0 {
		iterations = cfg.Iterations
	}
	return agent.NewSamplingAgent(rules, iterations, temperature, seed, cfg.SearchOptions()...)
}

func runExperiment(cmd *cobra.Command, args []string) error {
	exp, err := experiments.Lookup(args[0])
	if err != nil {
		return err
	}

	rules, err := newRules()
	if err != nil {
		return err
	}
	defer rules.Close()

	runner := &experiments.Runner{
		Rules:    rules,
		Start:    game.StartPosition,
		Games:    cfg.Games,
		MaxTurns: cfg.MaxTurns,
		Seed:     cfg.Seed,
		OutDir:   cfg.OutputDir,
	}
	summary, err := runner.Run(cmd.Context(), exp)
	if err != nil {
		return err
	}
	for _, result := range summary.MatchUps {
		log.Info().Msgf("agent %d vs agent %d: %d-%d, %d draws", result.Agent1, result.Agent2, result.Agent1Wins, result.Agent2Wins, result.Draws)
	}
	logThroughput(summary)
	return nil
}

func logThroughput(summary metrics.Summary) {
	for _, config := range summary.Agents {
		if rate, ok := summary.Throughput[config.ID]; ok {
			log.Info().Msgf("agent %d (%d iterations): %.0f iterations/s", config.ID, config.Iterations, rate)
		}
	}
}
