package langchain

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"research-agent/internal/application/port/input"
	"research-agent/internal/application/port/output"

	"github.com/tmc/langchaingo/agents"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/tools"
)

var _ input.ResearchAgent = (*Agent)(nil)

const (
	DefaultMaxIterations = 15
	inputKey             = "input"
	outputKey            = "output"
)

type Config struct {
	SystemPrompt  string
	MaxIterations int
	// UI is optional; when set, tool calls are echoed to the console.
	UI output.UserInteractionPort
}

// Agent runs an OpenAI functions agent through the langchaingo executor.
type Agent struct {
	model         llms.Model
	tools         []output.ToolPort
	ui            output.UserInteractionPort
	logger        output.LoggerPort
	systemPrompt  string
	maxIterations int
}

func New(model llms.Model, toolset []output.ToolPort, logger output.LoggerPort, cfg Config) *Agent {
	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Agent{
		model:         model,
		tools:         toolset,
		ui:            cfg.UI,
		logger:        logger,
		systemPrompt:  cfg.SystemPrompt,
		maxIterations: maxIterations,
	}
}

type ModelConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	// HTTPClient is optional; nil keeps the langchaingo default.
	HTTPClient *http.Client
}

func NewOpenAIModel(cfg ModelConfig) (llms.Model, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, openai.WithHTTPClient(cfg.HTTPClient))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai model: %w", err)
	}
	return llm, nil
}

func (a *Agent) Run(ctx context.Context, query string) (*input.AgentResult, error) {
	model := &countingModel{Model: a.model, logger: a.logger}
	handler := newCallbackHandler(a.logger)

	wrapped := make([]tools.Tool, 0, len(a.tools))
	for _, t := range a.tools {
		wrapped = append(wrapped, &observedTool{tool: t, ui: a.ui, logger: a.logger})
	}

	// The handler goes on the executor only: on the agent it would switch the
	// model to streaming.
	agent := agents.NewOpenAIFunctionsAgent(model, wrapped,
		agents.NewOpenAIOption().WithSystemMessage(a.systemPrompt),
	)
	executor := agents.NewExecutor(agent,
		agents.WithMaxIterations(a.maxIterations),
		agents.WithCallbacksHandler(handler),
	)

	values, err := executor.Call(ctx, map[string]any{inputKey: query})
	if err != nil {
		if errors.Is(err, agents.ErrNotFinished) {
			a.logger.Warn("Iteration cap reached", "maxIterations", a.maxIterations)
			return nil, fmt.Errorf("%w (%d): %w", input.ErrMaxIterations, a.maxIterations, err)
		}
		return nil, fmt.Errorf("agent run failed: %w", err)
	}

	out, ok := values[outputKey].(string)
	if !ok {
		return nil, fmt.Errorf("agent returned no %q value", outputKey)
	}

	a.logger.Info("Agent finished", "iterations", model.calls, "outputLen", len(out))
	return &input.AgentResult{
		Output:     out,
		Iterations: model.calls,
	}, nil
}

// countingModel counts planning round-trips so results report iterations the
// same way the built-in loop does.
type countingModel struct {
	llms.Model
	logger output.LoggerPort
	calls  int
}

func (m *countingModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	m.logger.Debug("Starting iteration", "iteration", m.calls, "messagesCount", len(messages))

	resp, err := m.Model.GenerateContent(ctx, messages, options...)
	if err != nil {
		return nil, fmt.Errorf("llm request failed: %w", err)
	}
	return resp, nil
}

// observedTool reports each call to the console and the log.
type observedTool struct {
	tool   output.ToolPort
	ui     output.UserInteractionPort
	logger output.LoggerPort
}

func (o *observedTool) Name() string        { return o.tool.Name() }
func (o *observedTool) Description() string { return o.tool.Description() }

func (o *observedTool) Call(ctx context.Context, toolInput string) (string, error) {
	name := o.tool.Name()
	o.logger.Info("Executing tool", "name", name, "input", toolInput)
	if o.ui != nil {
		o.ui.ShowToolStart(ctx, name, toolInput)
	}

	result, err := o.tool.Call(ctx, toolInput)
	if err != nil {
		o.logger.Error("Tool execution failed", "name", name, "error", err)
		if o.ui != nil {
			o.ui.ShowToolResult(ctx, name, err.Error(), true)
		}
		return "", fmt.Errorf("tool %s failed: %w", name, err)
	}

	o.logger.Debug("Tool completed", "name", name, "resultLen", len(result))
	if o.ui != nil {
		o.ui.ShowToolResult(ctx, name, result, false)
	}
	return result, nil
}
