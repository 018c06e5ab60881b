// Package hook implements hook pipes: ordered chains of hooks bound to one
// interface token and executed against a captured argument list.
//
// A pipe runs in one of two modes:
//
//   - Filter: hooks run in order and the first rejection stops the chain.
//     This is a veto chain ("does any validator reject this request?").
//   - Resultset: every hook runs and the outcomes are partitioned into
//     successful and failed executions ("collect every enricher's opinion").
//
// Hooks always run one at a time, index 0 first. A hook may block while it
// waits on I/O; that is the only suspension point. A hook that returns an
// error or panics is recorded as rejected with the error (or panic value) as
// its result and never aborts the pipe itself.
//
// Pipes are immutable. Factory.Pipe snapshots the hooks bound under a token
// at call time, so hooks bound later are only visible to pipes built later.
package hook
