// Package build tracks the lifecycle of one build run.
//
// A [Lifecycle] moves through the states Idle, Running and one of the
// terminal states Success, Error or Stopped:
//
//	Idle ──Start──▶ Running ──Exit(0)──▶ Success
//	                   │   └──Exit(n)──▶ Error
//	                   └──Stop─────────▶ Stopped
//
// Start is accepted from any state and begins a fresh run with a reset
// timer. Exit and Stop only act on a running build; everything else is a
// no-op, so a late exit notification after a stop never flips the result.
//
// The elapsed time is measured against an injectable [Clock]. While the
// build runs it grows; once the build leaves Running it is frozen.
//
// Lifecycle is not safe for concurrent use. It is owned by one event loop
// (see package view).
package build
