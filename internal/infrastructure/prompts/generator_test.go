package prompts

import (
	"context"
	"strings"
	"testing"

	"research-agent/internal/application/port/output"
	"research-agent/internal/infrastructure/schema"
)

type mockTool struct {
	name        string
	description string
}

func (m *mockTool) Name() string        { return m.name }
func (m *mockTool) Description() string { return m.description }
func (m *mockTool) Call(ctx context.Context, input string) (string, error) {
	return "", nil
}

func TestGenerateSystemPrompt(t *testing.T) {
	tools := []output.ToolPort{
		&mockTool{name: "search", description: "Search the web for information"},
		&mockTool{name: "wikipedia", description: "\n\tLook up a topic\n\ton Wikipedia"},
	}

	result, err := GenerateSystemPrompt(DefaultSystemPrompt, tools, "FORMAT GOES HERE")
	if err != nil {
		t.Fatalf("GenerateSystemPrompt failed: %v", err)
	}

	if !strings.Contains(result, "research assistant") {
		t.Error("Result should contain the assistant role")
	}

	if !strings.Contains(result, "- search: Search the web for information") {
		t.Error("Result should list the search tool")
	}

	if !strings.Contains(result, "- wikipedia: Look up a topic on Wikipedia") {
		t.Error("Result should list the wikipedia tool with collapsed whitespace")
	}

	if !strings.HasSuffix(strings.TrimSpace(result), "FORMAT GOES HERE") {
		t.Error("Format instructions should close the prompt")
	}

	t.Logf("Generated prompt:\n%s", result)
}

func TestGenerateSystemPromptNoTools(t *testing.T) {
	result, err := GenerateSystemPrompt(DefaultSystemPrompt, nil, "FORMAT")
	if err != nil {
		t.Fatalf("GenerateSystemPrompt failed: %v", err)
	}

	if strings.Contains(result, "Available tools") {
		t.Error("Tool section should be omitted when there are no tools")
	}
}

func TestGenerateSystemPromptWithSchemaInstructions(t *testing.T) {
	parser, err := schema.NewParser()
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}

	result, err := GenerateSystemPrompt(DefaultSystemPrompt, nil, parser.FormatInstructions())
	if err != nil {
		t.Fatalf("GenerateSystemPrompt failed: %v", err)
	}

	if !strings.Contains(result, `"tools_used"`) {
		t.Error("Result should embed the response schema")
	}
}

func TestGenerateSystemPromptInvalidTemplate(t *testing.T) {
	_, err := GenerateSystemPrompt(`Test {{.InvalidField}}`, nil, "")
	if err == nil {
		t.Error("Expected error for invalid template, got nil")
	}
}

func TestGenerateSystemPromptRejectsLeftoverMarkers(t *testing.T) {
	_, err := GenerateSystemPrompt(`{{.FormatInstructions}}`, nil, "use {{.input}}")
	if err != ErrTemplateMarkers {
		t.Errorf("Expected ErrTemplateMarkers, got %v", err)
	}
}
