package hostcap

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
)

// endOfTurnSentinel is the line a CLI operator types to signal that their
// pasted response is complete, since stdin has no structured turn
// boundary the way a host's event stream does.
const endOfTurnSentinel = "==END=="

// CLIHost is a terminal-driven Host: SendUserMessage prints the phase
// prompt to out, then, within the same call, reads the lines typed on in
// and turns them into an agent_end event once the operator terminates
// their response with endOfTurnSentinel. It exists so cmd/llmctl can run UL mode standalone,
// without a real embedding host.
type CLIHost struct {
	out io.Writer
	in  *bufio.Scanner

	mu               sync.Mutex
	agentEndHandlers []func(AgentEndEvent)
	runID            string
}

// NewCLIHost builds a CLIHost reading lines from in and writing prompts
// to out.
func NewCLIHost(in io.Reader, out io.Writer, runID string) *CLIHost {
	return &CLIHost{out: out, in: bufio.NewScanner(in), runID: runID}
}

func (h *CLIHost) RegisterTool(ToolDescriptor, ToolHandler) error { return nil }
func (h *CLIHost) RegisterCommand(string, CommandHandler) error  { return nil }

var _ Host = (*CLIHost)(nil)

// SendUserMessage prints text, then blocks reading stdin lines until the
// sentinel is seen, dispatching the accumulated text as an agent_end
// event.
func (h *CLIHost) SendUserMessage(ctx context.Context, text string, _ SendOptions) error {
	fmt.Fprintln(h.out, text)
	fmt.Fprintf(h.out, "\n(type your response, end with a line containing only %q)\n", endOfTurnSentinel)

	var lines []string
	for h.in.Scan() {
		line := h.in.Text()
		if line == endOfTurnSentinel {
			break
		}
		lines = append(lines, line)
	}
	if err := h.in.Err(); err != nil {
		return err
	}

	joined := ""
	for i, l := range lines {
		if i > 0 {
			joined += "\n"
		}
		joined += l
	}

	h.mu.Lock()
	handlers := append([]func(AgentEndEvent){}, h.agentEndHandlers...)
	h.mu.Unlock()
	for _, fn := range handlers {
		if fn != nil {
			fn(AgentEndEvent{RunID: h.runID, Text: joined})
		}
	}
	return nil
}

func (h *CLIHost) OnInput(func(InputEvent)) func() {
	return func() {}
}

func (h *CLIHost) OnAgentEnd(handler func(AgentEndEvent)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.agentEndHandlers = append(h.agentEndHandlers, handler)
	idx := len(h.agentEndHandlers) - 1
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.agentEndHandlers[idx] = nil
	}
}
