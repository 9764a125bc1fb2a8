package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
	"research-agent/internal/infrastructure/htmltext"
)

var (
	_ output.ToolPort = (*SearchTool)(nil)
	_ output.ToolPort = (*WikipediaTool)(nil)
	_ output.ToolPort = (*SaveTool)(nil)
)

// SearchTool exposes a web search backend under the name "search".
type SearchTool struct {
	backend output.ToolPort
	logger  output.LoggerPort
}

func NewSearchTool(backend output.ToolPort, logger output.LoggerPort) *SearchTool {
	return &SearchTool{backend: backend, logger: logger}
}

func (t *SearchTool) Name() string { return entity.ToolSearch.String() }
func (t *SearchTool) Description() string {
	return "Search the web for information. Input should be a search query."
}

func (t *SearchTool) Call(ctx context.Context, input string) (string, error) {
	t.logger.Info("Searching the web", "query", input)

	result, err := t.backend.Call(ctx, input)
	if err != nil {
		return "", err
	}

	t.logger.Debug("Search completed", "resultLen", len(result))
	return result, nil
}

// WikipediaTool returns one Wikipedia excerpt as plain text, capped at
// maxChars runes.
type WikipediaTool struct {
	backend  output.ToolPort
	maxChars int
	logger   output.LoggerPort
}

func NewWikipediaTool(backend output.ToolPort, maxChars int, logger output.LoggerPort) *WikipediaTool {
	return &WikipediaTool{backend: backend, maxChars: maxChars, logger: logger}
}

func (t *WikipediaTool) Name() string { return entity.ToolWikipedia.String() }
func (t *WikipediaTool) Description() string {
	return "Look up a topic on Wikipedia and return a short summary of the best matching article. Input should be a search query."
}

func (t *WikipediaTool) Call(ctx context.Context, input string) (string, error) {
	t.logger.Info("Querying Wikipedia", "query", input)

	raw, err := t.backend.Call(ctx, input)
	if err != nil {
		return "", err
	}

	cfg := htmltext.DefaultConfig
	cfg.MaxOutputRune = t.maxChars
	text := htmltext.Extract(raw, &cfg)

	t.logger.Debug("Wikipedia lookup completed", "rawLen", len(raw), "textLen", len(text))
	return text, nil
}

// SaveTool appends text to a file through the research store. Input is
// either plain text or {"text": "...", "filename": "..."}.
type SaveTool struct {
	store  output.ResearchStore
	logger output.LoggerPort
}

func NewSaveTool(store output.ResearchStore, logger output.LoggerPort) *SaveTool {
	return &SaveTool{store: store, logger: logger}
}

func (t *SaveTool) Name() string { return entity.ToolSaveToFile.String() }
func (t *SaveTool) Description() string {
	return `Saves research data to a text file. Input is the text to save, or a JSON object {"text": "...", "filename": "..."} to choose the file.`
}

type saveInput struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
}

func (t *SaveTool) Call(ctx context.Context, input string) (string, error) {
	args := parseSaveInput(input)

	path, err := t.store.Append(ctx, args.Text, args.Filename)
	if err != nil {
		t.logger.Error("Save failed", "filename", args.Filename, "error", err)
		return "", err
	}

	t.logger.Info("Research saved", "path", path, "textLen", len(args.Text))
	return fmt.Sprintf("Data successfully saved to %s", path), nil
}

func parseSaveInput(input string) saveInput {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "{") {
		var args saveInput
		if err := json.Unmarshal([]byte(trimmed), &args); err == nil && args.Text != "" {
			return args
		}
	}
	return saveInput{Text: input}
}
