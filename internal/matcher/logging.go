package matcher

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hetulpatel/arbscanner/internal/matches"
	"github.com/hetulpatel/arbscanner/internal/models"
)

type LogMode int

const (
	LogModeQuiet LogMode = iota
	LogModeSummary
	LogModeVerbose
)

func ParseLogMode(input string) LogMode {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "summary":
		return LogModeSummary
	case "verbose":
		return LogModeVerbose
	default:
		return LogModeQuiet
	}
}

func (m LogMode) String() string {
	switch m {
	case LogModeSummary:
		return "summary"
	case LogModeVerbose:
		return "verbose"
	default:
		return "quiet"
	}
}

// Logger echoes kept candidates to stdout and, when path is set, appends one
// JSON record per candidate to a match log. A nil Logger is quiet.
type Logger struct {
	mode LogMode
	path string
	mu   sync.Mutex
}

func NewLogger(mode LogMode, path string) *Logger {
	return &Logger{mode: mode, path: path}
}

func (l *Logger) Mode() LogMode {
	if l == nil {
		return LogModeQuiet
	}
	return l.mode
}

func (l *Logger) Enabled() bool {
	return l != nil && l.mode != LogModeQuiet
}

type logEntry struct {
	Timestamp  string            `json:"timestamp"`
	Similarity float64           `json:"similarity"`
	Threshold  float64           `json:"threshold"`
	Breakdown  matches.Breakdown `json:"breakdown"`
	Factors    []string          `json:"factors,omitempty"`
	A          models.Market     `json:"a"`
	B          models.Market     `json:"b"`
}

func (l *Logger) LogCandidate(c *matches.Candidate, threshold float64) {
	if !l.Enabled() || c == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.mode {
	case LogModeSummary:
		fmt.Printf("[matcher] matched %s (%s) -> %s (%s) sim=%.4f threshold=%.4f\n",
			c.A.Venue, label(&c.A), c.B.Venue, label(&c.B), c.Similarity, threshold)
	case LogModeVerbose:
		aJSON, _ := json.MarshalIndent(c.A, "", "  ")
		bJSON, _ := json.MarshalIndent(c.B, "", "  ")
		fmt.Printf("[matcher] match sim=%.4f threshold=%.4f factors=%v\na=%s\nb=%s\n",
			c.Similarity, threshold, c.Factors, string(aJSON), string(bJSON))
	}
	if l.path != "" {
		l.appendToFile(c, threshold)
	}
}

func label(m *models.Market) string {
	if t := m.Text(); t != "" {
		return t
	}
	return m.ID
}

func (l *Logger) appendToFile(c *matches.Candidate, threshold float64) {
	entry := logEntry{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		Similarity: c.Similarity,
		Threshold:  threshold,
		Breakdown:  c.Breakdown,
		Factors:    c.Factors,
		A:          c.A,
		B:          c.B,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Printf("[matcher] log file marshal error: %v\n", err)
		return
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Printf("[matcher] log file open error: %v\n", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		fmt.Printf("[matcher] log file write error: %v\n", err)
	}
}
