package llm

import "context"

// MockClient is a controllable test double for the Client interface.
type MockClient struct {
	// Deltas are streamed to onDelta in order.
	Deltas []string
	// Err, when set, is returned after streaming whatever Deltas contains.
	Err error
	// Calls records every request the mock served.
	Calls []Request
}

func (m *MockClient) Stream(ctx context.Context, req Request, onDelta func(string) error) (Response, error) {
	m.Calls = append(m.Calls, req)

	var reply string
	for _, delta := range m.Deltas {
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		default:
		}
		if err := onDelta(delta); err != nil {
			return Response{}, err
		}
		reply += delta
	}

	if m.Err != nil {
		return Response{}, m.Err
	}
	return Response{Reply: reply}, nil
}
