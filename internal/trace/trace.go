package trace

import (
	"fmt"
	"strings"
	"time"
)

// Tracer receives events. Emit is called from concurrent probes and must be
// goroutine-safe.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// Kind is the event type.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{"unknown", "begin", "end", "point", "heartbeat"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[0]
}

// Scope is the granularity of an event; lower is coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // whole merge run
	ScopePhase                   // isolation, exclusion, tail
	ScopeProbe                   // single engine invocation
)

var scopeNames = [...]string{"unknown", "driver", "phase", "probe"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return scopeNames[0]
}

// Event is one record of the timeline.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned at emission, monotonic per process
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans and free points
	Name     string // "isolation", "exclude:schema/a.graphql", ...
	Detail   string
	Extra    map[string]string
}

// Level controls verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // phases are recorded, meant for ring mode and crash dumps
	LevelPhase        // driver and phase spans
	LevelDetail       // plus one span per probe
	LevelDebug        // everything
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// finest scope each level lets through
var levelScope = [...]Scope{0, ScopePhase, ScopePhase, ScopeProbe, ScopeProbe}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts off|error|phase|detail|debug; empty means off.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelOff, nil
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(levelScope) {
		return false
	}
	return scope != 0 && scope <= levelScope[l]
}

// passes is the common filter of the sinks; heartbeats always pass.
func passes(l Level, ev *Event) bool {
	return ev.Kind == KindHeartbeat || l.ShouldEmit(ev.Scope)
}
