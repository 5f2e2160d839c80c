package hostcap

import (
	"context"
	"fmt"
	"sync"
)

// FakeHost is an in-memory Host used by loop tests. It records
// registrations and sent messages, and lets tests fire input/agent_end
// events synchronously.
type FakeHost struct {
	mu sync.Mutex

	Tools    map[string]ToolHandler
	Commands map[string]CommandHandler
	Sent     []string

	inputHandlers    []func(InputEvent)
	agentEndHandlers []func(AgentEndEvent)
}

// NewFakeHost builds an empty FakeHost ready for registration.
func NewFakeHost() *FakeHost {
	return &FakeHost{
		Tools:    make(map[string]ToolHandler),
		Commands: make(map[string]CommandHandler),
	}
}

func (h *FakeHost) RegisterTool(descriptor ToolDescriptor, execute ToolHandler) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.Tools[descriptor.Name]; exists {
		return fmt.Errorf("tool already registered: %s", descriptor.Name)
	}
	h.Tools[descriptor.Name] = execute
	return nil
}

func (h *FakeHost) RegisterCommand(name string, handler CommandHandler) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.Commands[name]; exists {
		return fmt.Errorf("command already registered: %s", name)
	}
	h.Commands[name] = handler
	return nil
}

func (h *FakeHost) SendUserMessage(_ context.Context, text string, _ SendOptions) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Sent = append(h.Sent, text)
	return nil
}

func (h *FakeHost) OnInput(handler func(InputEvent)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.inputHandlers = append(h.inputHandlers, handler)
	idx := len(h.inputHandlers) - 1
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.inputHandlers[idx] = nil
	}
}

func (h *FakeHost) OnAgentEnd(handler func(AgentEndEvent)) func() {
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

// FireAgentEnd invokes every live agent_end subscriber, for driving the
// UL-mode FSM from tests without a real host loop.
func (h *FakeHost) FireAgentEnd(ev AgentEndEvent) {
	h.mu.Lock()
	handlers := append([]func(AgentEndEvent){}, h.agentEndHandlers...)
	h.mu.Unlock()
	for _, fn := range handlers {
		if fn != nil {
			fn(ev)
		}
	}
}

// FakeVCS is an in-memory VCS used by commit-pipeline tests.
type FakeVCS struct {
	mu sync.Mutex

	Changed   []FileStatus
	Staged    map[string]bool
	Commits   []string
	Gitignore []string
	HeadHash  string
	StatsOut  StagedStats

	CommitErr error
}

// NewFakeVCS builds a FakeVCS with the given changed-file set.
func NewFakeVCS(changed []FileStatus) *FakeVCS {
	return &FakeVCS{
		Changed:  changed,
		Staged:   make(map[string]bool),
		HeadHash: "0000000",
	}
}

func (v *FakeVCS) ChangedFiles(context.Context) ([]FileStatus, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]FileStatus, len(v.Changed))
	copy(out, v.Changed)
	return out, nil
}

func (v *FakeVCS) StageFile(_ context.Context, path string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Staged[path] = true
	return nil
}

func (v *FakeVCS) StagedStats(context.Context) (StagedStats, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.StatsOut.FilesChanged == 0 {
		v.StatsOut.FilesChanged = len(v.Staged)
	}
	return v.StatsOut, nil
}

func (v *FakeVCS) Commit(_ context.Context, message string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.CommitErr != nil {
		return v.CommitErr
	}
	if len(v.Staged) == 0 {
		return fmt.Errorf("nothing staged")
	}
	v.Commits = append(v.Commits, message)
	v.Staged = make(map[string]bool)
	v.HeadHash = fmt.Sprintf("%07x", len(v.Commits)*1000003)
	return nil
}

func (v *FakeVCS) HeadShortHash(context.Context) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.HeadHash, nil
}

func (v *FakeVCS) WriteGitignore(_ context.Context, patterns []string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	existing := make(map[string]bool, len(v.Gitignore))
	for _, p := range v.Gitignore {
		existing[p] = true
	}
	for _, p := range patterns {
		if !existing[p] {
			v.Gitignore = append(v.Gitignore, p)
			existing[p] = true
		}
	}
	return nil
}
