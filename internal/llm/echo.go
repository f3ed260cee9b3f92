package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// echoClient is the deterministic development provider: it streams the user
// message back, tagged with the provider and model names. It stands in for
// providers that have no real transport configured.
type echoClient struct {
	provider string
}

// NewEchoClient creates an echo client labelled with the given provider name.
func NewEchoClient(provider string) Client {
	return &echoClient{provider: provider}
}

func (c *echoClient) Stream(ctx context.Context, req Request, onDelta func(string) error) (Response, error) {
	start := time.Now()
	reply := fmt.Sprintf("[DUMMY %s:%s] %s", strings.ToUpper(c.provider), req.Model, req.UserMessage)

	// Emit in a few fragments so the streaming path is exercised end to end.
	// Fragments are cut on rune boundaries so multibyte text survives the
	// per-delta JSON encoding downstream.
	const fragment = 24
	runes := []rune(reply)
	for i := 0; i < len(runes); i += fragment {
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		default:
		}

		end := i + fragment
		if end > len(runes) {
			end = len(runes)
		}
		if err := onDelta(string(runes[i:end])); err != nil {
			return Response{}, err
		}
	}

	return Response{Reply: reply, LatencyMS: time.Since(start).Milliseconds()}, nil
}
