// Package trace records what a formatting run does: which files were
// visited, which passes ran and how long they took.
//
// Enable it from the command line:
//
//	reindent fmt --trace=- --trace-level=detail src/
//
// # Levels
//
//   - LevelOff: nothing is recorded
//   - LevelError: only failures
//   - LevelPhase: driver boundaries
//   - LevelDetail: one span per file
//   - LevelDebug: per-file passes (load, split, indent, write)
//
// # Context propagation
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, "file:a.c", parentID)
//	defer span.End("")
package trace
