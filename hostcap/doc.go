// Package hostcap is consumed by the loop:
//
//	var callModel hostcap.CallModel = myProvider.Call
//	resp, err := callModel(ctx, hostcap.CallRequest{Provider: "anthropic", ModelID: "claude-opus", Prompt: p})
//
// Tests use the in-memory FakeHost/FakeVCS rather than a real host
// process or VCS.
package hostcap
