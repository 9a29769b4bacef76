package attrib

import (
	"context"
	"slices"
	"strconv"

	"gqlmerge/internal/diag"
	"gqlmerge/internal/engine"
	"gqlmerge/internal/source"
	"gqlmerge/internal/trace"
)

// Attribute resolves every diagnostic of the failed full merge to the
// fragment(s) that caused it. frags must be the fragments in the order the
// full merge saw them; full is that merge's diagnostic list.
//
// An engine fault aborts the run and is returned unchanged, without a
// partial report.
func Attribute(ctx context.Context, eng engine.Engine, frags []source.Fragment, full []diag.Diagnostic, opts Options) (*Report, error) {
	pending := make([]entry, len(full))
	for i, d := range full {
		pending[i] = entry{diag: d}
	}
	var records []Record

	isolated, pending, err := isolationPhase(ctx, eng, frags, pending, opts)
	if err != nil {
		return nil, err
	}
	records = append(records, isolated...)

	excluded, pending, err := exclusionPhase(ctx, eng, frags, pending, opts)
	if err != nil {
		return nil, err
	}
	records = append(records, excluded...)

	_, span := trace.Start(ctx, trace.ScopePhase, "tail")
	for _, e := range pending {
		records = append(records, Record{Diagnostic: e.diag, Phase: PhaseTail})
	}
	span.WithExtra("unattributed", strconv.Itoa(len(pending))).End("")

	for i := range records {
		records[i].Ordinal = i + 1
	}
	return &Report{Records: records, Total: len(records)}, nil
}

// isolationPhase merges each fragment alone. Its diagnostics claim pending
// entries in fragment order; an entry claimed once is never reconsidered.
func isolationPhase(ctx context.Context, eng engine.Engine, frags []source.Fragment, pending []entry, opts Options) ([]Record, []entry, error) {
	if len(pending) == 0 {
		return nil, pending, nil
	}
	ctx, span := trace.Start(ctx, trace.ScopePhase, "isolation")
	defer span.End("")

	outcomes, err := probeAll(ctx, eng, frags, ProbeIsolate, opts)
	if err != nil {
		return nil, nil, err
	}

	taken := make([]bool, len(pending))
	var records []Record
	for i, out := range outcomes {
		if out.OK() {
			continue
		}
		id := frags[i].ID
		for _, d := range out.Diagnostics {
			k := claim(pending, taken, d)
			if k < 0 {
				continue
			}
			taken[k] = true
			records = append(records, Record{
				Diagnostic: pending[k].diag,
				FragmentID: id,
				Candidates: []string{id},
				Blame:      id,
				Phase:      PhaseIsolation,
			})
		}
	}
	span.WithExtra("attributed", strconv.Itoa(len(records)))
	return records, unclaimed(pending, taken), nil
}

// exclusionPhase leaves each fragment out in turn. Every probe is judged
// against the same snapshot, so probe order and parallelism cannot change
// the result.
func exclusionPhase(ctx context.Context, eng engine.Engine, frags []source.Fragment, pending []entry, opts Options) ([]Record, []entry, error) {
	if len(pending) == 0 {
		return nil, pending, nil
	}
	ctx, span := trace.Start(ctx, trace.ScopePhase, "exclusion")
	defer span.End("")

	outcomes, err := probeAll(ctx, eng, frags, ProbeExclude, opts)
	if err != nil {
		return nil, nil, err
	}

	// candidates[k] — фрагменты, без которых k-я диагностика исчезает
	candidates := make([][]int, len(pending))
	for i, out := range outcomes {
		var cov []bool
		if !out.OK() {
			cov = covered(pending, out.Diagnostics)
		}
		for k := range pending {
			if cov == nil || !cov[k] {
				candidates[k] = append(candidates[k], i)
			}
		}
	}

	order := make([]int, 0, len(pending))
	for k := range pending {
		if len(candidates[k]) > 0 {
			order = append(order, k)
		}
	}
	// по первому кандидату, при равенстве — исходный порядок
	slices.SortStableFunc(order, func(a, b int) int {
		return candidates[a][0] - candidates[b][0]
	})

	taken := make([]bool, len(pending))
	records := make([]Record, 0, len(order))
	for _, k := range order {
		taken[k] = true
		ids := make([]string, len(candidates[k]))
		for j, i := range candidates[k] {
			ids[j] = frags[i].ID
		}
		rec := Record{
			Diagnostic: pending[k].diag,
			Candidates: ids,
			Blame:      ids[len(ids)-1],
			Phase:      PhaseExclusion,
		}
		if len(ids) == 1 {
			rec.FragmentID = ids[0]
		} else {
			rec.FragmentID = Multiple
		}
		records = append(records, rec)
	}
	span.WithExtra("attributed", strconv.Itoa(len(records)))
	return records, unclaimed(pending, taken), nil
}

func unclaimed(pending []entry, taken []bool) []entry {
	out := make([]entry, 0, len(pending))
	for k, e := range pending {
		if !taken[k] {
			out = append(out, e)
		}
	}
	return out
}
