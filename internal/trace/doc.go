// Package trace records the timeline of a gqlmerge run.
//
// Spans mark the driver run, the attribution phases (isolation, exclusion,
// tail) and individual probe merges. Output goes either straight to a writer
// (stream mode), into an in-memory ring that is dumped on failure, or both.
//
//	gqlmerge merge -s 'schema/**/*.graphql' --trace=- --trace-level=detail
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "isolation", 0)
//	defer span.End("")
//
// Scopes, coarsest first: driver, phase, probe. LevelPhase emits driver and
// phase events, LevelDetail adds probes, LevelDebug emits everything.
package trace
