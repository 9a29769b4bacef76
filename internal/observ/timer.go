package observ

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Timer collects wall-clock durations of named run phases in start order.
// A nil *Timer is valid and records nothing.
type Timer struct {
	mu     sync.Mutex
	phases []phase
}

type phase struct {
	name    string
	started time.Time
	took    time.Duration
	note    string
}

func NewTimer() *Timer { return &Timer{} }

// Begin opens a phase; pass the index to End.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, phase{name: name, started: time.Now()})
	return len(t.phases) - 1
}

func (t *Timer) End(idx int, note string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx >= 0 && idx < len(t.phases) {
		t.phases[idx].took = time.Since(t.phases[idx].started)
		t.phases[idx].note = note
	}
}

// Track times fn; a failing fn is noted as "failed".
func (t *Timer) Track(name string, fn func() error) error {
	idx := t.Begin(name)
	err := fn()
	if err != nil {
		t.End(idx, "failed")
	} else {
		t.End(idx, "")
	}
	return err
}

// PhaseReport — одна фаза в миллисекундах.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is the serializable view; TotalMS sums the phases, nested phases
// are counted twice.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	var r Report
	if t == nil {
		return r
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.phases {
		ms := p.took.Seconds() * 1000
		r.TotalMS += ms
		r.Phases = append(r.Phases, PhaseReport{Name: p.name, DurationMS: ms, Note: p.note})
	}
	return r
}

// Summary renders the report as an aligned table for stderr.
func (t *Timer) Summary() string {
	r := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	row := func(name string, ms float64, note string) {
		line := fmt.Sprintf("  %-20s %9.2f ms", name, ms)
		if note != "" {
			line += "  (" + note + ")"
		}
		b.WriteString(line + "\n")
	}
	for _, p := range r.Phases {
		row(p.Name, p.DurationMS, p.Note)
	}
	row("total", r.TotalMS, "")
	return b.String()
}

func (t *Timer) JSON() ([]byte, error) {
	return json.Marshal(t.Report())
}
