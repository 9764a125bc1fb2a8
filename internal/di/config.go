package di

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"research-agent/internal/application/port/output"
)

type Backend string

const (
	BackendLangchain Backend = "langchain"
	BackendOpenAI    Backend = "openai"
)

type SaveMode string

const (
	SaveAsk    SaveMode = "ask"
	SaveAlways SaveMode = "always"
	SaveNever  SaveMode = "never"
)

var (
	ErrMissingAPIKey   = errors.New("OPENAI_API_KEY is not set")
	ErrUnknownBackend  = errors.New("unknown agent backend")
	ErrUnknownSaveMode = errors.New("unknown save mode")
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string

	Backend       Backend
	MaxIterations int
	Timeout       time.Duration

	SearchMaxResults  int
	WikipediaLanguage string
	WikipediaMaxChars int
	UserAgent         string

	OutputFile string
	SaveMode   SaveMode

	LogLevel string
	LogDir   string
	LogHTTP  bool
	// RunName ends up in the log file name.
	RunName string

	// SystemPrompt overrides the embedded template when set.
	SystemPrompt string
}

// LoadConfig reads the environment. Malformed numbers, booleans and durations
// fall back to defaults; an unknown backend or save mode is an error.
func LoadConfig(env output.ConfigPort) (Config, error) {
	cfg := Config{
		APIKey:  env.Get("OPENAI_API_KEY"),
		Model:   env.GetWithDefault("OPENAI_MODEL", "gpt-4o-mini"),
		BaseURL: env.GetWithDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		Backend:       Backend(strings.ToLower(env.GetWithDefault("AGENT_BACKEND", string(BackendLangchain)))),
		MaxIterations: env.GetInt("AGENT_MAX_ITERATIONS", 15),
		Timeout:       env.GetDuration("AGENT_TIMEOUT", 10*time.Minute),

		SearchMaxResults:  env.GetInt("SEARCH_MAX_RESULTS", 5),
		WikipediaLanguage: env.GetWithDefault("WIKIPEDIA_LANGUAGE", "en"),
		WikipediaMaxChars: env.GetInt("WIKIPEDIA_MAX_CHARS", 100),
		UserAgent:         env.GetWithDefault("USER_AGENT", "research-agent/1.0"),

		OutputFile: env.GetWithDefault("OUTPUT_FILE", "research_output.txt"),
		SaveMode:   SaveMode(strings.ToLower(env.GetWithDefault("SAVE_MODE", string(SaveAsk)))),

		LogLevel: env.GetWithDefault("LOG_LEVEL", "info"),
		LogDir:   env.GetWithDefault("LOG_DIR", "log"),
		LogHTTP:  env.GetBool("HTTP_LOG", false),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}

	switch c.Backend {
	case BackendLangchain, BackendOpenAI:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}

	switch c.SaveMode {
	case SaveAsk, SaveAlways, SaveNever:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSaveMode, c.SaveMode)
	}

	return nil
}
