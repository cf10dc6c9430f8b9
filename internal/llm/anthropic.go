package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/weavecli/weave/internal/logging"
)

const anthropicBaseURL = "https://api.anthropic.com"

// AnthropicProvider lists models via the official SDK and hands out clients
// that speak the messages wire protocol directly. The message path is
// deliberately hand-rolled: the stream decoder below owns the SSE protocol.
type AnthropicProvider struct {
	apiKey  string
	baseURL string
}

func NewAnthropicProvider(apiKey string) *AnthropicProvider {
	return &AnthropicProvider{apiKey: apiKey, baseURL: anthropicBaseURL}
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

func (p *AnthropicProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	client := anthropic.NewClient(
		option.WithAPIKey(p.apiKey),
		option.WithBaseURL(p.baseURL),
	)

	page, err := client.Models.List(ctx, anthropic.ModelListParams{})
	if err != nil {
		return nil, fmt.Errorf("anthropic models: %w", err)
	}

	models := make([]ModelInfo, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, ModelInfo{ID: string(m.ID), DisplayName: m.DisplayName})
	}
	return models, nil
}

func (p *AnthropicProvider) Client(model string) (Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("anthropic: model name is empty")
	}
	return &AnthropicClient{
		apiKey:  p.apiKey,
		model:   model,
		baseURL: p.baseURL,
		http:    http.DefaultClient,
	}, nil
}

// AnthropicClient performs exchanges against one Anthropic model.
type AnthropicClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

type anthropicRequest struct {
	Stream      bool               `json:"stream"`
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	ID         string                  `json:"id"`
	Model      string                  `json:"model"`
	StopReason string                  `json:"stop_reason"`
	Usage      Usage                   `json:"usage"`
	Content    []anthropicContentBlock `json:"content"`
}

func (c *AnthropicClient) buildRequest(ctx context.Context, req Request, stream bool) (*http.Request, error) {
	wire := anthropicRequest{
		Stream:      stream,
		Model:       c.model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		System:      req.System,
	}
	for _, msg := range req.Messages {
		wire.Messages = append(wire.Messages, anthropicMessage{Role: msg.Role, Content: msg.Content})
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")
	return httpReq, nil
}

// Send performs one non-streaming exchange. Only text content blocks are
// extracted; anything else is logged and skipped.
func (c *AnthropicClient) Send(ctx context.Context, req Request) (*Reply, error) {
	httpReq, err := c.buildRequest(ctx, req, false)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var wire anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var body strings.Builder
	for _, block := range wire.Content {
		if block.Type != "text" {
			logging.Warn().Str("type", block.Type).Msg("skipping non-text content block")
			continue
		}
		body.WriteString(block.Text)
	}

	return &Reply{
		Meta: Meta{ID: wire.ID, Model: wire.Model, StopReason: wire.StopReason, Usage: wire.Usage},
		Body: body.String(),
	}, nil
}

// Stream opens the event stream for one exchange. It reads events until
// message_start so the returned metadata is complete, then hands the
// connection to a background decode task feeding the chunk channel.
func (c *AnthropicClient) Stream(ctx context.Context, req Request) (*StreamResponse, error) {
	httpReq, err := c.buildRequest(ctx, req, true)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	logging.Info().Str("model", c.model).Msg("stream open")

	dec := newStreamDecoder(resp.Body)
	meta, err := dec.awaitStart()
	if err != nil {
		resp.Body.Close()
		return nil, err
	}

	ch := make(chan Chunk, chunkBuffer)
	go dec.run(ctx, ch)

	return &StreamResponse{Meta: meta, Chunks: ch}, nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = resp.Status
	}
	return fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, msg)
}

// Anthropic SSE event tags.
const (
	eventMessageStart      = "message_start"
	eventContentBlockStart = "content_block_start"
	eventContentBlockDelta = "content_block_delta"
	eventContentBlockStop  = "content_block_stop"
	eventMessageDelta      = "message_delta"
	eventMessageStop       = "message_stop"
	eventPing              = "ping"
)

// blockSeparator is emitted between content blocks so multi-block replies
// stay readable when piped.
const blockSeparator = "\n\n"

type sseEvent struct {
	name string
	data string
}

// streamDecoder turns the provider's SSE wire protocol into ordered chunks.
// It owns the response body until the stream ends, one way or another.
type streamDecoder struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

func newStreamDecoder(body io.ReadCloser) *streamDecoder {
	scanner := bufio.NewScanner(body)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)
	return &streamDecoder{body: body, scanner: scanner}
}

// next reads one SSE event (event/data lines up to a blank line).
// Returns io.EOF when the event source is exhausted.
func (d *streamDecoder) next() (sseEvent, error) {
	var ev sseEvent
	seen := false

	for d.scanner.Scan() {
		line := d.scanner.Text()
		switch {
		case line == "":
			if seen {
				return ev, nil
			}
		case strings.HasPrefix(line, "event:"):
			ev.name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			seen = true
		case strings.HasPrefix(line, "data:"):
			if ev.data != "" {
				ev.data += "\n"
			}
			ev.data += strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			seen = true
		default:
			// Comment or unknown field, ignore.
		}
	}

	if err := d.scanner.Err(); err != nil {
		return sseEvent{}, err
	}
	if seen {
		return ev, nil
	}
	return sseEvent{}, io.EOF
}

type messageStartEnvelope struct {
	Message Meta `json:"message"`
}

// awaitStart consumes events until message_start and returns its metadata.
// Text arriving before message_start is a protocol error: metadata must be
// complete before any chunk is surfaced.
func (d *streamDecoder) awaitStart() (Meta, error) {
	for {
		ev, err := d.next()
		if err == io.EOF {
			return Meta{}, fmt.Errorf("event stream closed before message_start")
		}
		if err != nil {
			return Meta{}, fmt.Errorf("read event stream: %w", err)
		}

		switch ev.name {
		case eventMessageStart:
			var envelope messageStartEnvelope
			if err := json.Unmarshal([]byte(ev.data), &envelope); err != nil {
				return Meta{}, fmt.Errorf("decode message_start: %w", err)
			}
			logging.Debug().Str("id", envelope.Message.ID).Str("model", envelope.Message.Model).Msg("message start")
			return envelope.Message, nil
		case eventContentBlockDelta, eventContentBlockStop:
			return Meta{}, fmt.Errorf("protocol error: %s before message_start", ev.name)
		case eventPing:
			// Keepalive.
		default:
			logging.Debug().Str("event", ev.name).Msg("ignoring pre-start event")
		}
	}
}

// run decodes the remainder of the stream onto ch. Chunks are emitted in
// wire order; the bounded channel suspends the loop while the consumer is
// behind. The channel and the body are closed on the way out.
func (d *streamDecoder) run(ctx context.Context, ch chan<- Chunk) {
	defer close(ch)
	defer d.body.Close()

	for {
		ev, err := d.next()
		if err == io.EOF {
			logging.Debug().Msg("event stream exhausted")
			return
		}
		if err != nil {
			d.send(ctx, ch, Chunk{Err: fmt.Errorf("read event stream: %w", err)})
			return
		}

		switch ev.name {
		case eventContentBlockStart:
			// No text yet.
		case eventContentBlockDelta:
			var payload struct {
				Delta struct {
					Text string `json:"text"`
				} `json:"delta"`
			}
			if err := json.Unmarshal([]byte(ev.data), &payload); err != nil {
				d.send(ctx, ch, Chunk{Err: fmt.Errorf("decode content_block_delta: %w", err)})
				return
			}
			if !d.send(ctx, ch, Chunk{Text: payload.Delta.Text}) {
				return
			}
		case eventContentBlockStop:
			if !d.send(ctx, ch, Chunk{Text: blockSeparator}) {
				return
			}
		case eventMessageDelta:
			logging.Debug().Str("data", ev.data).Msg("message delta")
		case eventMessageStop:
			logging.Debug().Msg("message stop")
			return
		case eventPing, eventMessageStart:
			// Keepalives and duplicate starts carry no text.
		default:
			logging.Warn().Str("event", ev.name).Msg("unhandled event type")
		}
	}
}

// send delivers a chunk, giving up if the consumer's context ends first.
func (d *streamDecoder) send(ctx context.Context, ch chan<- Chunk, chunk Chunk) bool {
	select {
	case ch <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}
