// Package trace records what the checker is doing: driver and pass
// boundaries, per-file work and individual evaluator queries.
//
// # Usage
//
//	hxinfer check --trace=- --trace-level=phase src/
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "parse", 0)
//	defer span.End("")
//
// # Implementations
//
//   - Nop: disabled tracing
//   - StreamTracer: writes each event immediately (text or NDJSON)
//   - RingTracer: keeps the last N events for dumps after a failure
//   - MultiTracer: fans out to several tracers
//
// # Levels
//
//   - LevelOff: nothing
//   - LevelError: internal inconsistencies only
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: per-file events
//   - LevelDebug: evaluator queries
package trace
