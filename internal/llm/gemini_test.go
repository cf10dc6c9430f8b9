package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiRequestMapsRoles(t *testing.T) {
	c := &geminiClient{model: "gemini-2.0-flash"}
	contents, config := c.request(Request{
		System: "be terse",
		Messages: []Message{
			{Role: RoleUser, Content: "hello"},
			{Role: RoleAssistant, Content: "hi"},
			{Role: RoleUser, Content: "again"},
		},
		MaxTokens:   256,
		Temperature: 0.5,
	})

	if len(contents) != 3 {
		t.Fatalf("got %d contents, want 3", len(contents))
	}
	want := []genai.Role{genai.RoleUser, genai.RoleModel, genai.RoleUser}
	for i, content := range contents {
		if content.Role != string(want[i]) {
			t.Errorf("content %d role = %q, want %q", i, content.Role, want[i])
		}
	}

	if config.SystemInstruction == nil {
		t.Fatal("system instruction not set")
	}
	if config.MaxOutputTokens != 256 {
		t.Errorf("max output tokens = %d, want 256", config.MaxOutputTokens)
	}
	if config.Temperature == nil || *config.Temperature != 0.5 {
		t.Errorf("temperature = %v, want 0.5", config.Temperature)
	}
}
