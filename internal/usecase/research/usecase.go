package research

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"research-agent/internal/application/port/input"
	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
)

var ErrEmptyQuery = errors.New("query is empty")

// Outcome is one finished research run. Response is nil when the agent's
// text did not match the expected record; Raw is kept either way.
type Outcome struct {
	Query      string
	Raw        string
	Response   *entity.ResearchResponse
	ParseErr   error
	Iterations int
}

type UseCase struct {
	agent  input.ResearchAgent
	parser output.ResponseParser
	store  output.ResearchStore
	ui     output.UserInteractionPort
	logger output.LoggerPort
}

func New(
	agent input.ResearchAgent,
	parser output.ResponseParser,
	store output.ResearchStore,
	ui output.UserInteractionPort,
	logger output.LoggerPort,
) *UseCase {
	return &UseCase{
		agent:  agent,
		parser: parser,
		store:  store,
		ui:     ui,
		logger: logger,
	}
}

// Research runs the agent once and parses its answer. A parse failure is
// reported to the user and kept on the outcome; it is not returned.
func (uc *UseCase) Research(ctx context.Context, query string) (*Outcome, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	uc.logger.Info("Starting research", "query", query)

	result, err := uc.agent.Run(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("research failed: %w", err)
	}

	outcome := &Outcome{
		Query:      query,
		Raw:        result.Output,
		Iterations: result.Iterations,
	}

	resp, err := uc.parser.Parse(result.Output)
	if err != nil {
		uc.logger.Warn("Response did not match the schema", "error", err, "rawLen", len(result.Output))
		outcome.ParseErr = err
		uc.ui.ShowParseError(ctx, err, result.Output)
		return outcome, nil
	}

	outcome.Response = resp
	uc.logger.Info("Research completed",
		"topic", resp.Topic,
		"sources", len(resp.Sources),
		"toolsUsed", resp.ToolsUsed,
		"iterations", result.Iterations)
	uc.ui.ShowResponse(ctx, resp)
	return outcome, nil
}

// Save appends the raw agent text, not the parsed record.
func (uc *UseCase) Save(ctx context.Context, outcome *Outcome, filename string) (string, error) {
	if outcome == nil {
		return "", errors.New("nothing to save")
	}

	path, err := uc.store.Append(ctx, outcome.Raw, filename)
	if err != nil {
		return "", fmt.Errorf("save research output: %w", err)
	}

	uc.logger.Info("Research output saved", "path", path)
	uc.ui.ShowSaved(ctx, path)
	return path, nil
}
