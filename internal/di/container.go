package di

import (
	"context"
	"fmt"
	"net/http"

	"research-agent/internal/adapter/tool"
	"research-agent/internal/application/port/input"
	"research-agent/internal/application/port/output"
	"research-agent/internal/application/service"
	"research-agent/internal/infrastructure/agent/langchain"
	"research-agent/internal/infrastructure/httpclient"
	"research-agent/internal/infrastructure/llm/openrouter"
	"research-agent/internal/infrastructure/logger"
	"research-agent/internal/infrastructure/prompts"
	"research-agent/internal/infrastructure/schema"
	"research-agent/internal/infrastructure/storage/textfile"
	"research-agent/internal/infrastructure/userinteraction"
	"research-agent/internal/usecase/executor"
	"research-agent/internal/usecase/research"

	"github.com/spf13/afero"
)

type Container struct {
	Config   Config
	Logger   output.LoggerPort
	UI       output.UserInteractionPort
	Tools    output.ToolRegistry
	Agent    input.ResearchAgent
	Research *research.UseCase
}

type overrides struct {
	logger     output.LoggerPort
	ui         output.UserInteractionPort
	fs         afero.Fs
	httpClient *http.Client
}

type Option func(*overrides)

func WithLogger(l output.LoggerPort) Option {
	return func(o *overrides) { o.logger = l }
}

func WithUI(ui output.UserInteractionPort) Option {
	return func(o *overrides) { o.ui = ui }
}

func WithFs(fs afero.Fs) Option {
	return func(o *overrides) { o.fs = fs }
}

// WithHTTPClient replaces the client used for the LLM and the tools.
func WithHTTPClient(c *http.Client) Option {
	return func(o *overrides) { o.httpClient = c }
}

func NewContainer(ctx context.Context, cfg Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var ov overrides
	for _, opt := range opts {
		opt(&ov)
	}

	log := ov.logger
	if log == nil {
		fileLog, err := logger.NewLoggerAdapter(logger.Config{
			Dir:     cfg.LogDir,
			Level:   cfg.LogLevel,
			RunName: cfg.RunName,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		log = fileLog
	}

	container, err := build(cfg, ov, log)
	if err != nil {
		log.Close()
		return nil, err
	}
	return container, nil
}

func build(cfg Config, ov overrides, log output.LoggerPort) (*Container, error) {
	ui := ov.ui
	if ui == nil {
		ui = userinteraction.NewConsoleUserInteraction()
	}

	fs := ov.fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	httpClient := ov.httpClient
	if httpClient == nil && cfg.LogHTTP {
		httpClient = httpclient.NewLoggingClient(http.DefaultTransport, log)
	}

	parser, err := schema.NewParser()
	if err != nil {
		return nil, fmt.Errorf("failed to load response schema: %w", err)
	}

	store := textfile.New(fs, textfile.WithDefaultFilename(cfg.OutputFile))

	tools, err := registerResearchTools(cfg, httpClient, store, log)
	if err != nil {
		return nil, err
	}

	baseTemplate := cfg.SystemPrompt
	if baseTemplate == "" {
		baseTemplate = prompts.DefaultSystemPrompt
	}
	systemPrompt, err := prompts.GenerateSystemPrompt(baseTemplate, tools.All(), parser.FormatInstructions())
	if err != nil {
		return nil, fmt.Errorf("failed to render system prompt: %w", err)
	}

	agent, err := newAgent(cfg, httpClient, tools, ui, log, systemPrompt)
	if err != nil {
		return nil, err
	}

	log.Info("Container ready",
		"backend", cfg.Backend,
		"model", cfg.Model,
		"tools", len(tools.All()),
		"maxIterations", cfg.MaxIterations)

	return &Container{
		Config:   cfg,
		Logger:   log,
		UI:       ui,
		Tools:    tools,
		Agent:    agent,
		Research: research.New(agent, parser, store, ui, log),
	}, nil
}

func registerResearchTools(
	cfg Config,
	httpClient *http.Client,
	store output.ResearchStore,
	log output.LoggerPort,
) (*service.ToolRegistryImpl, error) {
	backendCfg := tool.BackendConfig{
		UserAgent:         cfg.UserAgent,
		SearchMaxResults:  cfg.SearchMaxResults,
		WikipediaLanguage: cfg.WikipediaLanguage,
		HTTPClient:        httpClient,
	}

	ddg, err := tool.NewDuckDuckGoBackend(backendCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create search backend: %w", err)
	}

	registry := service.NewToolRegistry()
	registry.Register(tool.NewSearchTool(ddg, log))
	registry.Register(tool.NewWikipediaTool(tool.NewWikipediaBackend(backendCfg), cfg.WikipediaMaxChars, log))
	registry.Register(tool.NewSaveTool(store, log))
	return registry, nil
}

func newAgent(
	cfg Config,
	httpClient *http.Client,
	tools output.ToolRegistry,
	ui output.UserInteractionPort,
	log output.LoggerPort,
	systemPrompt string,
) (input.ResearchAgent, error) {
	switch cfg.Backend {
	case BackendOpenAI:
		llmCfg := openrouter.DefaultConfig(cfg.APIKey, cfg.Model)
		llmCfg.BaseURL = cfg.BaseURL
		llmCfg.Logger = log
		llmCfg.HTTPClient = httpClient
		llm := openrouter.NewChatAdapter(llmCfg)

		return executor.New(llm, tools, log, executor.Config{
			SystemPrompt:  systemPrompt,
			MaxIterations: cfg.MaxIterations,
			UI:            ui,
		}), nil

	case BackendLangchain:
		model, err := langchain.NewOpenAIModel(langchain.ModelConfig{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create model: %w", err)
		}

		return langchain.New(model, tools.All(), log, langchain.Config{
			SystemPrompt:  systemPrompt,
			MaxIterations: cfg.MaxIterations,
			UI:            ui,
		}), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

func (c *Container) Close() {
	if c.Logger != nil {
		c.Logger.Close()
	}
}
