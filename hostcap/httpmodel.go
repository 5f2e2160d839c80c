package hostcap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// chatMessage mirrors the teacher's protocol.Message shape: just role and
// content, the minimum an OpenAI-compatible chat endpoint needs.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest mirrors the teacher's ChatData{Model, Messages, Options}.
type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Options  map[string]any `json:"-"`
}

func (r chatRequest) MarshalJSON() ([]byte, error) {
	fields := map[string]any{
		"model":    r.Model,
		"messages": r.Messages,
	}
	for k, v := range r.Options {
		fields[k] = v
	}
	return json.Marshal(fields)
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// HTTPModelClient implements CallModel against an OpenAI-compatible
// chat-completions endpoint. It is the concrete capability cmd/llmctl
// wires in for standalone (non-host-embedded) runs; a host embedding
// this module supplies its own CallModel instead.
type HTTPModelClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewHTTPModelClient builds a client with a sensible default http.Client.
func NewHTTPModelClient(baseURL, apiKey string) *HTTPModelClient {
	return &HTTPModelClient{BaseURL: baseURL, APIKey: apiKey, Client: &http.Client{}}
}

// Call implements hostcap.CallModel. req.Timeout (milliseconds) bounds the
// request via a derived context; callers still own overall ctx cancellation.
func (c *HTTPModelClient) Call(ctx context.Context, req CallRequest) (CallResponse, error) {
	callCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, time.Duration(req.Timeout)*time.Millisecond)
		defer cancel()
	}

	body := chatRequest{
		Model:    req.ModelID,
		Messages: []chatMessage{{Role: "user", Content: req.Prompt}},
		Options:  map[string]any{"thinking_level": string(req.ThinkingLevel)},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return CallResponse{}, fmt.Errorf("hostcap: marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return CallResponse{}, fmt.Errorf("hostcap: build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	if req.Label != "" {
		httpReq.Header.Set("X-Request-Label", req.Label)
	}

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return CallResponse{StatusCode: 0}, fmt.Errorf("hostcap: chat request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return CallResponse{StatusCode: resp.StatusCode}, fmt.Errorf("hostcap: read chat response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return CallResponse{StatusCode: resp.StatusCode}, fmt.Errorf("hostcap: chat request failed: status %d: %s", resp.StatusCode, string(data))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return CallResponse{StatusCode: resp.StatusCode}, fmt.Errorf("hostcap: decode chat response: %w", err)
	}
	if parsed.Error != nil {
		return CallResponse{StatusCode: resp.StatusCode}, fmt.Errorf("hostcap: provider error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return CallResponse{StatusCode: resp.StatusCode}, fmt.Errorf("hostcap: chat response had no choices")
	}

	return CallResponse{Text: parsed.Choices[0].Message.Content, StatusCode: resp.StatusCode}, nil
}
