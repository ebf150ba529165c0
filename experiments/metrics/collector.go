package metrics

import (
	"sync/atomic"
	"time"
)

// Playout is the result of a single rollout.
type Playout int

const (
	PlayoutWin     Playout = iota // ended on a lost condition, credited as a win
	PlayoutLoss                   // ended on a lost condition, credited as a loss
	PlayoutDraw                   // ran out of legal moves
	PlayoutCutoff                 // hit the depth limit
	PlayoutAborted                // the rules rejected a move
	PlayoutSkipped                // started from a terminal node
)

func (p Playout) String() string {
	switch p {
	case PlayoutWin:
		return "win"
	case PlayoutLoss:
		return "loss"
	case PlayoutDraw:
		return "draw"
	case PlayoutCutoff:
		return "cutoff"
	case PlayoutAborted:
		return "aborted"
	case PlayoutSkipped:
		return "skipped"
	}
	return "unknown"
}

type SearchMetric struct {
	Iterations   int           `json:"iterations" yaml:"iterations"`
	Cutoff       int           `json:"cutoff" yaml:"cutoff"`
	Duration     time.Duration `json:"duration" yaml:"duration"`
	Episodes     int           `json:"episodes" yaml:"episodes"`           // completed iterations
	FullPlayouts int           `json:"full_playouts" yaml:"full_playouts"` // playouts that reached a lost condition
	Wins         int           `json:"wins" yaml:"wins"`
	Losses       int           `json:"losses" yaml:"losses"`
	Aborted      int           `json:"aborted" yaml:"aborted"`
	Defects      int           `json:"defects" yaml:"defects"` // iterations abandoned because expansion failed
	TreeSize     int           `json:"tree_size" yaml:"tree_size"`
}

type MoveMetric struct {
	Step  int
	White bool // side that searched
	SearchMetric
}

type GameMetric struct {
	ID          string
	StartFEN    string
	FinalFEN    string
	Winner      string // "white", "black" or "" for no decisive result
	Termination string
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	TotalMoves  int
}

type Collector interface {
	Start(iterations, cutoff int)
	AddEpisode()
	AddPlayout(result Playout)
	AddDefect()
	SetTreeSize(size int)
	Complete() SearchMetric
}

type collector struct {
	iterations   int
	cutoff       int
	startTime    time.Time
	episodes     atomic.Int32
	fullPlayouts atomic.Int32
	wins         atomic.Int32
	losses       atomic.Int32
	aborted      atomic.Int32
	defects      atomic.Int32
	treeSize     atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(iterations, cutoff int) {
	m.startTime = time.Now()
	m.iterations = iterations
	m.cutoff = cutoff
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) AddPlayout(result Playout) {
	switch result {
	case PlayoutWin:
		m.fullPlayouts.Add(1)
		m.wins.Add(1)
	case PlayoutLoss:
		m.fullPlayouts.Add(1)
		m.losses.Add(1)
	case PlayoutAborted:
		m.aborted.Add(1)
	}
}

func (m *collector) AddDefect() {
	m.defects.Add(1)
}

func (m *collector) SetTreeSize(size int) {
	m.treeSize.Store(int32(size))
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Iterations:   m.iterations,
		Cutoff:       m.cutoff,
		Duration:     time.Since(m.startTime),
		Episodes:     int(m.episodes.Load()),
		FullPlayouts: int(m.fullPlayouts.Load()),
		Wins:         int(m.wins.Load()),
		Losses:       int(m.losses.Load()),
		Aborted:      int(m.aborted.Load()),
		Defects:      int(m.defects.Load()),
		TreeSize:     int(m.treeSize.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(iterations, cutoff int) {}
func (m *dummyCollector) AddEpisode()                  {}
func (m *dummyCollector) AddPlayout(result Playout)    {}
func (m *dummyCollector) AddDefect()                   {}
func (m *dummyCollector) SetTreeSize(size int)         {}
func (m *dummyCollector) Complete() SearchMetric       { return SearchMetric{} }
