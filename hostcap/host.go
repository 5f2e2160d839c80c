package hostcap

import "context"

// ToolResult is the shape every tool/command invocation returns to the
// host, per §7's user-visible behavior contract.
type ToolResult struct {
	Content []string
	Details map[string]any
	Error   string
}

// ToolDescriptor advertises a tool's name and argument schema to the host.
type ToolDescriptor struct {
	Name        string
	Description string
	Schema      map[string]any
}

// ToolHandler executes a registered tool invocation.
type ToolHandler func(ctx context.Context, args map[string]any) (ToolResult, error)

// CommandHandler executes a registered slash command invocation.
type CommandHandler func(ctx context.Context, rawArgs string) (ToolResult, error)

// DeliverAs selects how a user message is surfaced by the host.
type DeliverAs string

const (
	DeliverAsText   DeliverAs = "text"
	DeliverAsSystem DeliverAs = "system"
)

// SendOptions configures SendUserMessage.
type SendOptions struct {
	DeliverAs DeliverAs
}

// InputEvent is delivered to "input" handlers.
type InputEvent struct {
	RunID string
	Text  string
}

// AgentEndEvent is delivered to "agent_end" handlers; it carries the
// raw text the host's active turn produced, which the UL-mode FSM
// parses for phase markers.
type AgentEndEvent struct {
	RunID string
	Text  string
}

// Host is the capability surface a running loop consumes from its
// embedding process: registering tools/commands, sending messages into
// the host's active turn, and subscribing to completion events.
type Host interface {
	RegisterTool(descriptor ToolDescriptor, execute ToolHandler) error
	RegisterCommand(name string, handler CommandHandler) error
	SendUserMessage(ctx context.Context, text string, opts SendOptions) error
	OnInput(handler func(InputEvent)) (unsubscribe func())
	OnAgentEnd(handler func(AgentEndEvent)) (unsubscribe func())
}
