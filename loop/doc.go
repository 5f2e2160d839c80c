// Package loop implements the self-improvement run engine: cycle mode (a
// fixed sweep of seven analytical perspectives per cycle) and UL mode (an
// explicit research/plan/implement phase state machine), sharing config,
// retry, commit, and logging infrastructure.
//
// Callers build a Config, a RunState, and a Deps bundle, then call Run.
// Run always writes the run log's header and footer, regardless of how
// the run terminates, and reports termination through RunState.StopReason
// rather than a distinguished error for expected stop conditions.
package loop
