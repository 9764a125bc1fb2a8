package input

import (
	"context"
	"errors"
)

// ErrMaxIterations is returned by every backend when the agent keeps calling
// tools past its iteration cap.
var ErrMaxIterations = errors.New("agent stopped: max iterations exceeded")

type AgentResult struct {
	Output     string
	Iterations int
}

// ResearchAgent runs one agent loop for a query and returns its final text.
type ResearchAgent interface {
	Run(ctx context.Context, query string) (*AgentResult, error)
}
