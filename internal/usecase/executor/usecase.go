package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"research-agent/internal/application/port/input"
	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
)

var _ input.ResearchAgent = (*UseCase)(nil)

var ErrMaxIterations = input.ErrMaxIterations

const (
	DefaultMaxIterations = 15
	maxObservationLen    = 20000
	truncatedSuffix      = "\n... (truncated)"
)

type UseCase struct {
	llm           output.LLMPort
	tools         output.ToolRegistry
	ui            output.UserInteractionPort
	logger        output.LoggerPort
	systemPrompt  string
	maxIterations int
}

type Config struct {
	SystemPrompt  string
	MaxIterations int
	// UI is optional; when set, tool calls are echoed to the console.
	UI output.UserInteractionPort
}

func New(
	llm output.LLMPort,
	tools output.ToolRegistry,
	logger output.LoggerPort,
	cfg Config,
) *UseCase {
	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &UseCase{
		llm:           llm,
		tools:         tools,
		ui:            cfg.UI,
		logger:        logger,
		systemPrompt:  cfg.SystemPrompt,
		maxIterations: maxIterations,
	}
}

func (uc *UseCase) Run(ctx context.Context, query string) (*input.AgentResult, error) {
	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: uc.systemPrompt},
		{Role: entity.RoleUser, Content: query},
	}

	toolDefs := uc.tools.Definitions()

	for iteration := 1; iteration <= uc.maxIterations; iteration++ {
		uc.logger.Debug("Starting iteration", "iteration", iteration)

		resp, err := uc.llm.Chat(ctx, output.ChatRequest{
			Messages:    messages,
			Tools:       toolDefs,
			Temperature: 0.0,
		})
		if err != nil {
			return nil, fmt.Errorf("llm request failed: %w", err)
		}

		messages = append(messages, resp.Message)

		if len(resp.Message.ToolCalls) == 0 {
			uc.logger.Info("Agent finished", "iterations", iteration, "outputLen", len(resp.Message.Content))
			return &input.AgentResult{
				Output:     resp.Message.Content,
				Iterations: iteration,
			}, nil
		}

		for _, tc := range resp.Message.ToolCalls {
			observation, err := uc.executeTool(ctx, tc)
			if err != nil {
				return nil, err
			}

			messages = append(messages, entity.Message{
				Role:       entity.RoleTool,
				ToolCallID: tc.ID,
				Name:       tc.Name,
				Content:    observation,
			})
		}
	}

	uc.logger.Warn("Iteration cap reached", "maxIterations", uc.maxIterations)
	return nil, fmt.Errorf("%w (%d)", ErrMaxIterations, uc.maxIterations)
}

// executeTool returns the observation for one call. Unknown tools become an
// observation the model can recover from; tool failures end the run.
func (uc *UseCase) executeTool(ctx context.Context, tc entity.ToolCall) (string, error) {
	tool, ok := uc.tools.Get(tc.Name)
	if !ok {
		uc.logger.Warn("Unknown tool called", "name", tc.Name)
		return fmt.Sprintf("Error: unknown tool '%s'", tc.Name), nil
	}

	toolInput := toolInput(tc.Arguments)
	uc.logger.Info("Executing tool", "name", tc.Name, "input", toolInput)
	if uc.ui != nil {
		uc.ui.ShowToolStart(ctx, tc.Name, toolInput)
	}

	result, err := tool.Call(ctx, toolInput)
	if err != nil {
		uc.logger.Error("Tool execution failed", "name", tc.Name, "error", err)
		if uc.ui != nil {
			uc.ui.ShowToolResult(ctx, tc.Name, err.Error(), true)
		}
		return "", fmt.Errorf("tool %s failed: %w", tc.Name, err)
	}

	if len(result) > maxObservationLen {
		result = cutBytes(result, maxObservationLen) + truncatedSuffix
	}

	uc.logger.Debug("Tool completed", "name", tc.Name, "resultLen", len(result))
	if uc.ui != nil {
		uc.ui.ShowToolResult(ctx, tc.Name, result, false)
	}
	return result, nil
}

// toolInput unwraps the single string argument from the function-call JSON.
// Anything that does not look like {"input": "..."} is passed through as is.
func toolInput(arguments string) string {
	var args map[string]any
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return arguments
	}
	for _, key := range []string{"input", "__arg1"} {
		if v, ok := args[key].(string); ok {
			return v
		}
	}
	return arguments
}

// cutBytes shortens s to at most n bytes without splitting a rune.
func cutBytes(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
