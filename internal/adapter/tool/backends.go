package tool

import (
	"net/http"

	"research-agent/internal/application/port/output"

	"github.com/tmc/langchaingo/tools/duckduckgo"
	"github.com/tmc/langchaingo/tools/wikipedia"
)

// wikipediaRawLimit bounds the HTML extract fetched before it is converted to
// text and cut to the configured length.
const wikipediaRawLimit = 20000

type BackendConfig struct {
	UserAgent         string
	SearchMaxResults  int
	WikipediaLanguage string
	// HTTPClient is optional; nil keeps the langchaingo defaults.
	HTTPClient *http.Client
}

func NewDuckDuckGoBackend(cfg BackendConfig) (output.ToolPort, error) {
	var opts []duckduckgo.Option
	if cfg.HTTPClient != nil {
		opts = append(opts, duckduckgo.WithHTTPClient(cfg.HTTPClient))
	}

	ddg, err := duckduckgo.New(cfg.SearchMaxResults, cfg.UserAgent, opts...)
	if err != nil {
		return nil, err
	}
	return ddg, nil
}

func NewWikipediaBackend(cfg BackendConfig) output.ToolPort {
	var opts []wikipedia.Option
	if cfg.HTTPClient != nil {
		opts = append(opts, wikipedia.WithHTTPClient(cfg.HTTPClient))
	}

	wiki := wikipedia.New(cfg.UserAgent, opts...)
	wiki.TopK = 1
	wiki.DocMaxChars = wikipediaRawLimit
	if cfg.WikipediaLanguage != "" {
		wiki.LanguageCode = cfg.WikipediaLanguage
	}
	return wiki
}
