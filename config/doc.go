// Package config performs the single environment-variable read described
// in spec.md §6: every env var is read exactly once, at module init, into
// an immutable Overrides value that is merged over each subsystem's
// DefaultConfig. It is not the only reader: coordinator.LoadConfig reads
// the coordinator's own variables, and cmd/llmctl reads LLMCTL_API_KEY and
// LLMCTL_OBSERVER itself.
package config
