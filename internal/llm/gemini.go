package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider implements Provider using the Google GenAI SDK.
type GeminiProvider struct {
	apiKey string
}

func NewGeminiProvider(apiKey string) *GeminiProvider {
	return &GeminiProvider{apiKey: apiKey}
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) newClient(ctx context.Context) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return client, nil
}

func (p *GeminiProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	client, err := p.newClient(ctx)
	if err != nil {
		return nil, err
	}

	var models []ModelInfo
	for m, err := range client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("gemini models: %w", err)
		}
		models = append(models, ModelInfo{
			ID:          strings.TrimPrefix(m.Name, "models/"),
			DisplayName: m.DisplayName,
		})
	}
	return models, nil
}

func (p *GeminiProvider) Client(model string) (Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("gemini: model name is empty")
	}
	return &geminiClient{provider: p, model: model}, nil
}

type geminiClient struct {
	provider *GeminiProvider
	model    string
}

func (c *geminiClient) request(req Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		role := genai.Role(genai.RoleUser)
		if msg.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}

	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	}
	return contents, config
}

func (c *geminiClient) meta(resp *genai.GenerateContentResponse) Meta {
	meta := Meta{ID: resp.ResponseID, Model: resp.ModelVersion}
	if resp.UsageMetadata != nil {
		meta.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return meta
}

func (c *geminiClient) Send(ctx context.Context, req Request) (*Reply, error) {
	client, err := c.provider.newClient(ctx)
	if err != nil {
		return nil, err
	}

	contents, config := c.request(req)
	resp, err := client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}

	return &Reply{Meta: c.meta(resp), Body: resp.Text()}, nil
}

func (c *geminiClient) Stream(ctx context.Context, req Request) (*StreamResponse, error) {
	client, err := c.provider.newClient(ctx)
	if err != nil {
		return nil, err
	}

	contents, config := c.request(req)
	ch := make(chan Chunk, chunkBuffer)
	go func() {
		defer close(ch)
		for resp, err := range client.Models.GenerateContentStream(ctx, c.model, contents, config) {
			if err != nil {
				select {
				case ch <- Chunk{Err: fmt.Errorf("gemini stream: %w", err)}:
				case <-ctx.Done():
				}
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			select {
			case ch <- Chunk{Text: text}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return &StreamResponse{Meta: Meta{Model: c.model}, Chunks: ch}, nil
}
