package langchain

import (
	"context"

	"research-agent/internal/application/port/output"

	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/schema"
)

var _ callbacks.Handler = (*callbackHandler)(nil)

// callbackHandler forwards executor events to the structured log.
type callbackHandler struct {
	callbacks.SimpleHandler
	logger output.LoggerPort
}

func newCallbackHandler(logger output.LoggerPort) *callbackHandler {
	return &callbackHandler{logger: logger}
}

func (h *callbackHandler) HandleAgentAction(ctx context.Context, action schema.AgentAction) {
	h.logger.Debug("Agent action",
		"tool", action.Tool,
		"toolInput", action.ToolInput,
		"toolID", action.ToolID)
}

func (h *callbackHandler) HandleAgentFinish(ctx context.Context, finish schema.AgentFinish) {
	h.logger.Debug("Agent finish", "returnKeys", len(finish.ReturnValues))
}

func (h *callbackHandler) HandleToolError(ctx context.Context, err error) {
	h.logger.Error("Tool error", "error", err)
}

func (h *callbackHandler) HandleChainError(ctx context.Context, err error) {
	h.logger.Error("Chain error", "error", err)
}

func (h *callbackHandler) HandleLLMError(ctx context.Context, err error) {
	h.logger.Error("LLM error", "error", err)
}
