// Package audit records validation verdicts so a formula or input error that
// tripped the no-arbitrage gate can be traced after the fact.
package audit

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmaclay/backstop/validation"
)

// Entry is one recorded validation verdict.
type Entry struct {
	ID        string  `json:"id"`
	Timestamp string  `json:"timestamp"`
	Check     string  `json:"check"`
	Status    string  `json:"status"`
	Message   string  `json:"message"`
	Measured  float64 `json:"measured_value"`
	Bound     float64 `json:"bound"`
}

// Recorder persists audit entries.
type Recorder interface {
	Record(entry Entry) error
}

// Trail fans validation outcomes out to its registered recorders. Only HALT
// and WARN verdicts are recorded; PASS is the steady state and would drown
// the trail.
type Trail struct {
	mu        sync.RWMutex
	recorders map[string]Recorder
}

// NewTrail creates an empty audit trail.
func NewTrail() *Trail {
	return &Trail{recorders: make(map[string]Recorder)}
}

// Register adds a recorder under a name, replacing any previous one.
func (t *Trail) Register(name string, r Recorder) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recorders[name] = r
}

// Observe records a non-passing outcome for the named check. The first
// recorder error wins; recording never mutates the outcome.
func (t *Trail) Observe(check string, out validation.Outcome) error {
	if out.Status == validation.Pass {
		return nil
	}

	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Check:     check,
		Status:    out.Status.String(),
		Message:   out.Message,
		Measured:  out.Measured,
		Bound:     out.Bound,
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, r := range t.recorders {
		if err := r.Record(entry); err != nil {
			return err
		}
	}
	return nil
}

// FileRecorder appends entries as JSON lines to a single file.
type FileRecorder struct {
	mu   sync.Mutex
	path string
}

// NewFileRecorder creates a recorder appending to path.
func NewFileRecorder(path string) *FileRecorder {
	return &FileRecorder{path: path}
}

// Record appends the entry as one JSON line.
func (r *FileRecorder) Record(entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = f.Write(line)
	return err
}
