// Package llm defines the provider abstraction and the streaming types
// shared by all concrete providers.
package llm

import "context"

// Role values for transcript messages sent to a provider.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of provider-agnostic chat context.
type Message struct {
	Role    string
	Content string
}

// Request carries everything a client needs for one exchange. The system
// prompt comes from the pattern; Messages is the accumulated transcript
// including the query being asked.
type Request struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Usage reports token counts when the provider supplies them.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Meta is the structured metadata of one reply, populated from the
// provider's message envelope before any text is surfaced.
type Meta struct {
	ID         string `json:"id"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason,omitempty"`
	Usage      Usage  `json:"usage"`
}

// Reply is a complete non-streaming response.
type Reply struct {
	Meta Meta
	Body string
}

// Chunk is one unit of streamed assistant text, or the stream's terminal
// error. After a Chunk with Err set, the channel yields nothing further.
type Chunk struct {
	Text string
	Err  error
}

// chunkBuffer bounds the decoder-to-consumer channel so a slow sink
// throttles the decode loop instead of buffering the whole reply.
const chunkBuffer = 8

// StreamResponse couples reply metadata with the ordered chunk channel.
// Meta is complete before the first chunk is emitted. The channel is
// closed by the producer when the stream ends, cleanly or not.
type StreamResponse struct {
	Meta   Meta
	Chunks <-chan Chunk
}

// ModelInfo describes one model from a provider's catalog.
type ModelInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
}

// Client performs exchanges against a single model.
type Client interface {
	// Send performs one blocking exchange and returns the full reply.
	Send(ctx context.Context, req Request) (*Reply, error)

	// Stream opens an event stream for one exchange. The returned
	// channel is owned by a background task which closes it when the
	// stream terminates; the caller must drain it.
	Stream(ctx context.Context, req Request) (*StreamResponse, error)
}

// Provider exposes a model catalog and constructs per-model clients.
// Wire-format mapping lives entirely inside the concrete implementation.
type Provider interface {
	Name() string
	ListModels(ctx context.Context) ([]ModelInfo, error)
	Client(model string) (Client, error)
}
