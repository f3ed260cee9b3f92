// Package llm is the transport to upstream model providers. The gateway
// treats it as a narrow external collaborator: one streaming call per
// governed request.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Request is a single chat completion request.
type Request struct {
	Model        string // Provider-local model name, e.g. "gpt-4o-mini"
	SystemPrompt string
	UserMessage  string
}

// Response summarizes a finished stream.
type Response struct {
	Reply     string
	LatencyMS int64
}

// Client streams a chat completion, invoking onDelta for each text fragment
// as it arrives. Implementations must stop consuming upstream tokens when ctx
// is cancelled and return ctx.Err().
type Client interface {
	Stream(ctx context.Context, req Request, onDelta func(delta string) error) (Response, error)
}

// SplitModelID splits a policy model id of the form "provider:model".
func SplitModelID(modelID string) (provider, model string, err error) {
	parts := strings.SplitN(modelID, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed model id %q, want provider:model", modelID)
	}
	return parts[0], parts[1], nil
}

// Router dispatches a model id to the client registered for its provider.
// Unknown providers fall through to the echo client so a misconfigured policy
// degrades to a visible dummy reply instead of an outage.
type Router struct {
	clients  map[string]Client
	fallback Client
}

// NewRouter builds a router over the given provider clients.
func NewRouter(clients map[string]Client) *Router {
	return &Router{clients: clients, fallback: NewEchoClient("unknown")}
}

// Stream resolves the provider from modelID and streams through its client.
func (r *Router) Stream(ctx context.Context, modelID, systemPrompt, userMessage string, onDelta func(string) error) (Response, error) {
	provider, model, err := SplitModelID(modelID)
	if err != nil {
		return Response{}, err
	}

	client, ok := r.clients[provider]
	if !ok {
		client = r.fallback
	}

	return client.Stream(ctx, Request{
		Model:        model,
		SystemPrompt: systemPrompt,
		UserMessage:  userMessage,
	}, onDelta)
}
