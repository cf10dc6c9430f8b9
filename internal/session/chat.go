package session

import (
	"context"
	"fmt"
	"io"

	"github.com/weavecli/weave/internal/llm"
	"github.com/weavecli/weave/internal/logging"
	"github.com/weavecli/weave/internal/patterns"
)

// Params are the generation knobs threaded explicitly into each request.
type Params struct {
	MaxTokens   int
	Temperature float64
}

// Chat sequences exchanges between one session and one provider client.
type Chat struct {
	session *Session
	client  llm.Client
	params  Params
}

func NewChat(sess *Session, client llm.Client, params Params) *Chat {
	return &Chat{session: sess, client: client, params: params}
}

// Session exposes the underlying session, e.g. for pruning after an
// exchange.
func (c *Chat) Session() *Session {
	return c.session
}

// request builds the provider request from the pattern's system prompt and
// the full transcript, unknown entries excluded.
func (c *Chat) request(pat patterns.Pattern) llm.Request {
	req := llm.Request{
		System:      pat.System,
		MaxTokens:   c.params.MaxTokens,
		Temperature: c.params.Temperature,
	}
	for _, entry := range c.session.Entries() {
		switch {
		case entry.IsQuery():
			req.Messages = append(req.Messages, llm.Message{Role: llm.RoleUser, Content: entry.Content})
		case entry.IsReply():
			req.Messages = append(req.Messages, llm.Message{Role: llm.RoleAssistant, Content: entry.Content})
		default:
			logging.Debug().Str("role", entry.Role).Msg("skipping unknown transcript entry")
		}
	}
	return req
}

// Send performs one blocking exchange: the query is appended first and
// stays recorded even when the provider call fails, so user intent is
// never lost. The reply is written to out with a trailing newline and
// appended to the transcript.
func (c *Chat) Send(ctx context.Context, pat patterns.Pattern, text string, out io.Writer) error {
	if err := c.session.Append(Query(text, pat.Name)); err != nil {
		return err
	}

	reply, err := c.client.Send(ctx, c.request(pat))
	if err != nil {
		return err
	}
	logging.Info().Str("id", reply.Meta.ID).Str("model", reply.Meta.Model).
		Int("output_tokens", reply.Meta.Usage.OutputTokens).Msg("reply metadata")

	if _, err := fmt.Fprintln(out, reply.Body); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}
	return c.session.Append(Reply(reply.Body))
}

type flusher interface {
	Flush() error
}

// Stream performs one streaming exchange. Each chunk is written to out and
// flushed as it arrives; unless the session is ephemeral the chunks are
// accumulated and appended as a single reply entry when the stream closes.
// A terminal stream error aborts without appending a reply; partial output
// already written to out is left as-is.
func (c *Chat) Stream(ctx context.Context, pat patterns.Pattern, text string, out io.Writer) error {
	if err := c.session.Append(Query(text, pat.Name)); err != nil {
		return err
	}

	resp, err := c.client.Stream(ctx, c.request(pat))
	if err != nil {
		return err
	}
	logging.Info().Str("id", resp.Meta.ID).Str("model", resp.Meta.Model).Msg("stream metadata")

	var reply []byte
	accumulate := !c.session.IsEphemeral()

	for chunk := range resp.Chunks {
		if chunk.Err != nil {
			return chunk.Err
		}
		if _, err := io.WriteString(out, chunk.Text); err != nil {
			return fmt.Errorf("write chunk: %w", err)
		}
		if f, ok := out.(flusher); ok {
			if err := f.Flush(); err != nil {
				return fmt.Errorf("flush chunk: %w", err)
			}
		}
		if accumulate {
			reply = append(reply, chunk.Text...)
		}
	}

	if accumulate {
		return c.session.Append(Reply(string(reply)))
	}
	return nil
}
