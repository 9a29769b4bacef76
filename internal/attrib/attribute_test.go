package attrib

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"gqlmerge/internal/diag"
	"gqlmerge/internal/engine"
	"gqlmerge/internal/source"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fragments(t *testing.T, pairs ...string) []source.Fragment {
	t.Helper()
	set := source.NewFragmentSet()
	for i := 0; i+1 < len(pairs); i += 2 {
		if _, err := set.AddVirtual(pairs[i], pairs[i+1]); err != nil {
			t.Fatal(err)
		}
	}
	return set.Fragments()
}

// attribute runs the full merge and attributes its failure.
func attribute(t *testing.T, eng engine.Engine, frags []source.Fragment, opts Options) (*Report, []diag.Diagnostic) {
	t.Helper()
	full, err := eng.Merge(context.Background(), frags)
	if err != nil {
		t.Fatalf("full merge: %v", err)
	}
	if full.OK() {
		t.Fatal("full merge unexpectedly succeeded")
	}
	report, err := Attribute(context.Background(), eng, frags, full.Diagnostics, opts)
	if err != nil {
		t.Fatalf("Attribute: %v", err)
	}
	return report, full.Diagnostics
}

func mixedFragments(t *testing.T) []source.Fragment {
	return fragments(t,
		"a.graphql", "def Foo\nself Loop",
		"b.graphql", "def Foo",
		"c.graphql", "def Bar",
	)
}

func TestAttributeMixedPhases(t *testing.T) {
	eng := &fakeEngine{inject: "adapter: limit reached", injectMin: 2}
	report, _ := attribute(t, eng, mixedFragments(t), Options{Jobs: 1})

	want := []Record{
		{
			Ordinal:    1,
			Diagnostic: diag.NewError(diag.StageSchema, "merge: Loop conflicts with itself"),
			FragmentID: "a.graphql",
			Candidates: []string{"a.graphql"},
			Blame:      "a.graphql",
			Phase:      PhaseIsolation,
		},
		{
			Ordinal:    2,
			Diagnostic: diag.NewError(diag.StageSchema, "Foo defined twice"),
			FragmentID: Multiple,
			Candidates: []string{"a.graphql", "b.graphql"},
			Blame:      "b.graphql",
			Phase:      PhaseExclusion,
		},
		{
			Ordinal:    3,
			Diagnostic: diag.NewError(diag.StageSchema, "adapter: limit reached"),
			Phase:      PhaseTail,
		},
	}
	if diff := cmp.Diff(want, report.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if report.Total != 3 {
		t.Errorf("Total = %d, want 3", report.Total)
	}
	if !report.Partial() || len(report.Unattributed()) != 1 {
		t.Error("report with a tail record must be partial")
	}
	// full + 3 isolation + 3 exclusion
	if eng.Calls() != 7 {
		t.Errorf("engine calls = %d, want 7", eng.Calls())
	}
}

func TestAttributeCompleteness(t *testing.T) {
	scenarios := map[string][]source.Fragment{
		"mixed": mixedFragments(t),
		"syntax": fragments(t,
			"a", "def X\n!unexpected }",
			"b", "!missing name",
			"c", "def X",
		),
		"duplicates": fragments(t,
			"a", "def X\ndef Y",
			"b", "def X",
			"c", "def Y\ndef X",
		),
		"identical text": fragments(t,
			"a", "def Same",
			"b", "def Same",
		),
	}
	for name, frags := range scenarios {
		t.Run(name, func(t *testing.T) {
			eng := &fakeEngine{inject: "adapter: limit reached", injectMin: 2}
			report, full := attribute(t, eng, frags, Options{})
			got := slices.Sorted(slices.Values(report.Messages()))
			want := slices.Sorted(slices.Values(diag.Messages(full)))
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("report is not a permutation of the failure (-want +got):\n%s", diff)
			}
			for i, rec := range report.Records {
				if rec.Ordinal != i+1 {
					t.Errorf("record %d has ordinal %d", i, rec.Ordinal)
				}
			}
			if report.Total != len(full) {
				t.Errorf("Total = %d, want %d", report.Total, len(full))
			}
		})
	}
}

func TestAttributeDeterministic(t *testing.T) {
	frags := mixedFragments(t)
	eng := &fakeEngine{inject: "adapter: limit reached", injectMin: 2}
	first, _ := attribute(t, eng, frags, Options{})
	second, _ := attribute(t, eng, frags, Options{})
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("runs differ (-first +second):\n%s", diff)
	}
}

func TestAttributeParallelMatchesSequential(t *testing.T) {
	frags := fragments(t,
		"a", "def A\ndef Shared",
		"b", "self Knot",
		"c", "def Shared\ndef B",
		"d", "def B",
		"e", "def C",
		"f", "def C\nself Tangle",
	)
	eng := &fakeEngine{inject: "adapter: limit reached", injectMin: 2}
	sequential, _ := attribute(t, eng, frags, Options{Jobs: 1})
	parallel, _ := attribute(t, eng, frags, Options{Jobs: 8})
	if diff := cmp.Diff(sequential, parallel); diff != "" {
		t.Errorf("parallel run differs (-sequential +parallel):\n%s", diff)
	}
}

func TestAttributeOrderSensitivity(t *testing.T) {
	forward := fragments(t, "A.graphql", "def Foo", "B.graphql", "def Foo")
	backward := []source.Fragment{forward[1], forward[0]}

	rf, _ := attribute(t, &fakeEngine{}, forward, Options{})
	rb, _ := attribute(t, &fakeEngine{}, backward, Options{})

	if rf.Records[0].Diagnostic.Message != rb.Records[0].Diagnostic.Message {
		t.Fatal("diagnostic text must not depend on order")
	}
	if rf.Records[0].Blame != "B.graphql" {
		t.Errorf("forward blame = %s, want B.graphql", rf.Records[0].Blame)
	}
	if rb.Records[0].Blame != "A.graphql" {
		t.Errorf("backward blame = %s, want A.graphql", rb.Records[0].Blame)
	}
}

func TestAttributeMultipleCandidates(t *testing.T) {
	frags := fragments(t,
		"A", "def Foo",
		"B", "def Foo",
		"C", "def Bar",
	)
	report, _ := attribute(t, &fakeEngine{}, frags, Options{})
	if len(report.Records) != 1 {
		t.Fatalf("expected one record, got %d", len(report.Records))
	}
	rec := report.Records[0]
	if !rec.IsMultiple() {
		t.Errorf("FragmentID = %q, want %q", rec.FragmentID, Multiple)
	}
	if diff := cmp.Diff([]string{"A", "B"}, rec.Candidates); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
	byFragment := report.ByFragment()
	if len(byFragment["A"]) != 1 || len(byFragment["B"]) != 1 || len(byFragment["C"]) != 0 {
		t.Errorf("ByFragment = %v", byFragment)
	}
}

func TestAttributeSyntaxErrorStaysWithItsFragment(t *testing.T) {
	neighbours := [][]string{
		{"ok1", "def A"},
		{"ok2", "def A"},
		{"ok3", "self Knot"},
	}
	for _, n := range neighbours {
		frags := fragments(t, n[0], n[1], "broken", "def Z\n!unexpected }", "tail", "def Q")
		report, _ := attribute(t, &fakeEngine{}, frags, Options{})
		if len(report.Records) != 1 {
			t.Fatalf("with %s: expected one record, got %+v", n[0], report.Records)
		}
		rec := report.Records[0]
		if rec.FragmentID != "broken" || rec.Phase != PhaseIsolation {
			t.Errorf("with %s: syntax error attributed to %q in %v", n[0], rec.FragmentID, rec.Phase)
		}
		if !rec.Diagnostic.HasPosition() {
			t.Error("syntax diagnostic lost its position")
		}
	}
}

func TestAttributeSingleFragmentExclusion(t *testing.T) {
	// один фрагмент: исключение даёт пустой список, он сливается успешно
	eng := engine.Func(func(_ context.Context, frags []source.Fragment) (engine.Outcome, error) {
		if len(frags) == 0 {
			return engine.Success(nil), nil
		}
		return engine.Failure(diag.NewError(diag.StageSchema, "root type missing")), nil
	})
	frags := fragments(t, "only", "def X")
	full := []diag.Diagnostic{diag.NewError(diag.StageSchema, "while merging: schema has no root")}
	report, err := Attribute(context.Background(), eng, frags, full, Options{})
	if err != nil {
		t.Fatal(err)
	}
	rec := report.Records[0]
	if rec.FragmentID != "only" || rec.Phase != PhaseExclusion {
		t.Errorf("got %+v", rec)
	}
}

func TestAttributeNoDiagnosticsSkipsProbes(t *testing.T) {
	eng := &fakeEngine{}
	report, err := Attribute(context.Background(), eng, mixedFragments(t), nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if report.Total != 0 || eng.Calls() != 0 {
		t.Errorf("Total = %d, calls = %d; want 0, 0", report.Total, eng.Calls())
	}
}

func TestAttributeFaultPropagates(t *testing.T) {
	fault := &engine.FaultError{Engine: "fake", Err: errors.New("resource exhausted")}
	eng := engine.Func(func(_ context.Context, frags []source.Fragment) (engine.Outcome, error) {
		if len(frags) == 1 && frags[0].ID == "b" {
			return engine.Outcome{}, fault
		}
		return engine.Failure(diag.NewError(diag.StageSchema, "x")), nil
	})
	frags := fragments(t, "a", "", "b", "", "c", "")
	full := []diag.Diagnostic{diag.NewError(diag.StageSchema, "y")}

	for _, jobs := range []int{1, 4} {
		report, err := Attribute(context.Background(), eng, frags, full, Options{Jobs: jobs})
		if report != nil {
			t.Error("no partial report on fault")
		}
		if !errors.Is(err, fault) {
			t.Errorf("jobs=%d: err = %v, want the engine fault unchanged", jobs, err)
		}
	}
}

func TestAttributeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	full := []diag.Diagnostic{diag.NewError(diag.StageSchema, "Foo defined twice")}
	_, err := Attribute(ctx, &fakeEngine{}, mixedFragments(t), full, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestAttributeObserver(t *testing.T) {
	var (
		mu     sync.Mutex
		events []ProbeEvent
	)
	opts := Options{Jobs: 4, Observer: func(ev ProbeEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}}
	eng := &fakeEngine{inject: "adapter: limit reached", injectMin: 2}
	attribute(t, eng, mixedFragments(t), opts)

	counts := map[ProbeKind]map[bool]int{ProbeIsolate: {}, ProbeExclude: {}}
	for _, ev := range events {
		counts[ev.Kind][ev.Done]++
		if ev.Total != 3 {
			t.Errorf("event %+v has wrong total", ev)
		}
	}
	for _, kind := range []ProbeKind{ProbeIsolate, ProbeExclude} {
		if counts[kind][false] != 3 || counts[kind][true] != 3 {
			t.Errorf("%s events = %v, want 3 started and 3 done", kind, counts[kind])
		}
	}
}
