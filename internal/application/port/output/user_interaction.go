package output

import (
	"context"

	"research-agent/internal/domain/entity"
)

type UserInteractionPort interface {
	AskQuery(ctx context.Context, prompt string) (string, error)
	Confirm(ctx context.Context, question string) (bool, error)

	ShowResponse(ctx context.Context, resp *entity.ResearchResponse)
	ShowParseError(ctx context.Context, err error, raw string)
	ShowSaved(ctx context.Context, path string)
	ShowToolStart(ctx context.Context, toolName, input string)
	ShowToolResult(ctx context.Context, toolName, result string, isError bool)
}
