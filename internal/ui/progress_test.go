package ui

import (
	"errors"
	"strings"
	"testing"

	"gqlmerge/internal/attrib"
)

func TestProgressModelTracksProbes(t *testing.T) {
	events := make(chan attrib.ProbeEvent)
	m := NewProgressModel("attributing", []string{"a.graphql", "b.graphql"}, events).(*progressModel)

	m.Update(eventMsg(attrib.ProbeEvent{Kind: attrib.ProbeIsolate, FragmentID: "a.graphql", Total: 2}))
	if m.rows[0].label() != "isolating" {
		t.Errorf("status = %q, want isolating", m.rows[0].label())
	}
	m.Update(eventMsg(attrib.ProbeEvent{Kind: attrib.ProbeIsolate, FragmentID: "a.graphql", Total: 2, Done: true, Diagnostics: 2}))
	m.Update(eventMsg(attrib.ProbeEvent{Kind: attrib.ProbeExclude, FragmentID: "b.graphql", Index: 1, Total: 2, Done: true, Err: errors.New("boom")}))

	if m.rows[0].label() != "2 diag" || m.rows[1].label() != "error" {
		t.Errorf("statuses = %q, %q", m.rows[0].label(), m.rows[1].label())
	}
	if m.settled != 2 {
		t.Errorf("settled = %d, want 2", m.settled)
	}
	view := m.View()
	for _, want := range []string{"a.graphql", "b.graphql", "exclusion"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	got := truncate("schema/very/long/path.graphql", 10)
	if !strings.HasSuffix(got, "...") || len(got) > 10 {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
}
