package output

import (
	"context"

	"research-agent/internal/domain/entity"
)

// ToolPort is a single-string tool. Its method set matches langchaingo's
// tools.Tool, so registered tools can be handed to a langchaingo agent as is.
type ToolPort interface {
	Name() string
	Description() string
	Call(ctx context.Context, input string) (string, error)
}

type ToolRegistry interface {
	Register(tool ToolPort)
	Get(name string) (ToolPort, bool)
	All() []ToolPort
	Definitions() []entity.ToolDefinition
}
