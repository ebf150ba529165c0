package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type AgentConfig struct {
	ID              int     `yaml:"id"`
	Iterations      int     `yaml:"iterations"`
	Cutoff          int     `yaml:"cutoff,omitempty"`           // rollout depth limit, default when zero
	BranchingFactor int     `yaml:"branching_factor,omitempty"` // unlimited when zero
	FullExpansion   bool    `yaml:"full_expansion,omitempty"`
	Temperature     float64 `yaml:"temperature,omitempty"`
}

type GameRecord struct {
	ID    int
	White int // AgentConfig.ID
	Black int // AgentConfig.ID
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

// MatchUpResult counts results from the point of view of the first agent of
// a match-up, whichever colour it played.
type MatchUpResult struct {
	Agent1     int `yaml:"agent1"`
	Agent2     int `yaml:"agent2"`
	Games      int `yaml:"games"`
	Agent1Wins int `yaml:"agent1_wins"`
	Agent2Wins int `yaml:"agent2_wins"`
	Draws      int `yaml:"draws"`
}

type Summary struct {
	RunID      string          `yaml:"run_id"`
	Experiment string          `yaml:"experiment"`
	StartedAt  time.Time       `yaml:"started_at"`
	Duration   time.Duration   `yaml:"duration"`
	Agents     []AgentConfig   `yaml:"agents"`
	MatchUps   []MatchUpResult `yaml:"match_ups"`
	// Throughput is the mean number of completed iterations per second, by
	// agent ID.
	Throughput map[int]float64 `yaml:"throughput"`
}

type Writer struct {
	baseDir string
	runID   string
}

// NewWriter creates a fresh output directory for one run of an experiment,
// root/name/<timestamp>.
func NewWriter(root, name string) (*Writer, error) {
	// Create a subfolder named by current timestamp
	timestamp := time.Now().UTC().Format("20060102T150405.000Z")
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
		runID:   uuid.NewString(),
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) RunID() string {
	return w.runID
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "iterations", "cutoff", "branching_factor", "full_expansion", "temperature"}
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			strconv.Itoa(config.Iterations),
			strconv.Itoa(config.Cutoff),
			strconv.Itoa(config.BranchingFactor),
			strconv.FormatBool(config.FullExpansion),
			strconv.FormatFloat(config.Temperature, 'f', -1, 64),
		})
	}
	return w.writeCSV("agent_configs.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "game_id", "white", "black", "winner", "termination", "total_moves", "start_fen", "final_fen", "start_time", "end_time", "duration"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			record.GameMetric.ID,
			strconv.Itoa(record.White),
			strconv.Itoa(record.Black),
			record.Winner,
			record.Termination,
			strconv.Itoa(record.TotalMoves),
			record.StartFEN,
			record.FinalFEN,
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		})
	}
	return w.writeCSV("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "step", "white", "iterations", "cutoff", "duration", "episodes", "full_playouts", "wins", "losses", "aborted", "defects", "tree_size"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			strconv.FormatBool(record.White),
			strconv.Itoa(record.Iterations),
			strconv.Itoa(record.Cutoff),
			record.Duration.String(),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.FullPlayouts),
			strconv.Itoa(record.Wins),
			strconv.Itoa(record.Losses),
			strconv.Itoa(record.Aborted),
			strconv.Itoa(record.Defects),
			strconv.Itoa(record.TreeSize),
		})
	}
	return w.writeCSV("move_records.csv", header, rows)
}

// WriteSummary stores the run summary as experiment.yaml.
func (w *Writer) WriteSummary(summary Summary) error {
	summary.RunID = w.runID
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	path := filepath.Join(w.baseDir, "experiment.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}
