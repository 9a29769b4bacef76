package trace

import (
	"context"
	"strconv"
	"time"
)

// Heartbeat emits periodic events so that a hung merge still shows up in
// the timeline.
type Heartbeat struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartHeartbeat ticks every interval until Stop. A disabled tracer or a
// non-positive interval gives an inert Heartbeat.
func StartHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	done := make(chan struct{})
	if t == nil || !t.Enabled() || interval <= 0 {
		close(done)
		return &Heartbeat{cancel: func() {}, done: done}
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		began := time.Now()
		for beat := 1; ; beat++ {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			t.Emit(stamp(&Event{
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				Name:   "heartbeat",
				Detail: strconv.Itoa(beat),
				Extra:  map[string]string{"elapsed": time.Since(began).Round(time.Millisecond).String()},
			}))
		}
	}()
	return &Heartbeat{cancel: cancel, done: done}
}

// Stop is idempotent and waits for the ticking goroutine to exit.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}
