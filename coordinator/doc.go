// Package coordinator maintains a filesystem-backed registry of peer
// coding-agent instances sharing one machine, so that a shared LLM-call
// concurrency budget can be divided fairly between them without any one
// process holding authoritative in-memory state over the others.
//
// A Coordinator is constructed with New, then Register'd for the lifetime of
// one agent process:
//
//	coord := coordinator.New(coordinator.DefaultRuntimeRoot(home), cfg, observer)
//	if err := coord.Register(sessionID, cwd); err != nil { ... }
//	defer coord.Unregister()
//
//	limit, _ := coord.GetParallelLimit()
//
// All state lives under the instances/, queue-states/, and locks/
// directories beneath the coordinator's root; every read tolerates a
// missing or corrupt file (treating it as "no usable record") and every
// write is a temp-file-then-rename so peers never observe a partial record.
package coordinator
