// Package hostcap describes the capabilities the loop and coordinator
// consume from the embedding host: model calls, VCS operations, and an
// event bus for tool/command registration. The capabilities are
// interfaces; the package also ships concrete implementations
// (HTTPModelClient, GitVCS, CLIHost) and in-memory fakes, and an embedding
// host may supply its own.
package hostcap

import "context"

// ThinkingLevel scales a model's baseline call timeout.
type ThinkingLevel string

const (
	ThinkingNone   ThinkingLevel = "none"
	ThinkingLow    ThinkingLevel = "low"
	ThinkingMedium ThinkingLevel = "medium"
	ThinkingHigh   ThinkingLevel = "high"
)

// CallRequest is the input to a single model call.
type CallRequest struct {
	Provider      string
	ModelID       string
	ThinkingLevel ThinkingLevel
	Prompt        string
	Timeout       int64 // milliseconds; caller-computed per §4.4/§5
	Label         string
}

// CallResponse is the textual result of a model call plus the status
// classification the retry wrapper and rate controller need.
type CallResponse struct {
	Text       string
	StatusCode int // 0 when the provider gave no HTTP-equivalent status
}

// CallModel is the function signature the loop invokes for every
// perspective, phase, and commit-message prompt. Implementations must
// respect ctx cancellation and return promptly once ctx is done.
type CallModel func(ctx context.Context, req CallRequest) (CallResponse, error)
