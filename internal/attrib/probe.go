package attrib

import (
	"context"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"gqlmerge/internal/engine"
	"gqlmerge/internal/source"
	"gqlmerge/internal/trace"
)

// ProbeKind distinguishes isolation probes from exclusion probes.
type ProbeKind uint8

const (
	ProbeIsolate ProbeKind = iota + 1
	ProbeExclude
)

func (k ProbeKind) String() string {
	switch k {
	case ProbeIsolate:
		return "isolate"
	case ProbeExclude:
		return "exclude"
	default:
		return "unknown"
	}
}

// ProbeEvent is reported before and after every engine probe.
type ProbeEvent struct {
	Kind       ProbeKind
	FragmentID string
	Index      int // fragment position, 0-based
	Total      int // probes in this phase
	Done       bool
	// Diagnostics is the number of diagnostics the probe produced (Done only).
	Diagnostics int
	Err         error
}

// Observer receives probe events. Probes may run concurrently, so an
// Observer must be safe for concurrent use.
type Observer func(ProbeEvent)

// Options tune an attribution run.
type Options struct {
	// Jobs bounds concurrent probes. <= 0 means GOMAXPROCS, 1 is sequential.
	Jobs     int
	Observer Observer
}

func (o Options) jobs(n int) int {
	jobs := o.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, n))
}

func (o Options) notify(ev ProbeEvent) {
	if o.Observer != nil {
		o.Observer(ev)
	}
}

// Isolate merges f on its own.
func Isolate(ctx context.Context, eng engine.Engine, f source.Fragment) (engine.Outcome, error) {
	return eng.Merge(ctx, []source.Fragment{f})
}

// Exclude merges frags without the fragment whose id is omittedID.
func Exclude(ctx context.Context, eng engine.Engine, frags []source.Fragment, omittedID string) (engine.Outcome, error) {
	return eng.Merge(ctx, source.Without(frags, omittedID))
}

// probeAll runs one probe per fragment and returns outcomes indexed by
// fragment position. The first engine fault cancels the rest and is
// returned unchanged.
func probeAll(ctx context.Context, eng engine.Engine, frags []source.Fragment, kind ProbeKind, opts Options) ([]engine.Outcome, error) {
	outcomes := make([]engine.Outcome, len(frags))
	if len(frags) == 0 {
		return outcomes, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs(len(frags)))
	for i := range frags {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			id := frags[i].ID
			opts.notify(ProbeEvent{Kind: kind, FragmentID: id, Index: i, Total: len(frags)})

			pctx, span := trace.Start(gctx, trace.ScopeProbe, kind.String()+":"+id)
			var (
				out engine.Outcome
				err error
			)
			if kind == ProbeIsolate {
				out, err = Isolate(pctx, eng, frags[i])
			} else {
				out, err = Exclude(pctx, eng, frags, id)
			}
			span.WithExtra("diagnostics", strconv.Itoa(len(out.Diagnostics))).End("")

			opts.notify(ProbeEvent{
				Kind:        kind,
				FragmentID:  id,
				Index:       i,
				Total:       len(frags),
				Done:        true,
				Diagnostics: len(out.Diagnostics),
				Err:         err,
			})
			if err != nil {
				return err
			}
			// индекс i уникален, мьютекс не нужен
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
