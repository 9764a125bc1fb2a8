package di

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"research-agent/internal/infrastructure/agent/langchain"
	"research-agent/internal/infrastructure/logger"
	"research-agent/internal/infrastructure/userinteraction"
	"research-agent/internal/usecase/executor"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig(backend Backend, baseURL string) Config {
	return Config{
		APIKey:            "sk-test",
		Model:             "gpt-4o-mini",
		BaseURL:           baseURL,
		Backend:           backend,
		MaxIterations:     5,
		SearchMaxResults:  5,
		WikipediaLanguage: "en",
		WikipediaMaxChars: 100,
		UserAgent:         "research-agent/test",
		OutputFile:        "research_output.txt",
		SaveMode:          SaveNever,
	}
}

func testOptions(fs afero.Fs, out *bytes.Buffer) []Option {
	return []Option{
		WithLogger(logger.NewNop()),
		WithFs(fs),
		WithUI(userinteraction.NewConsoleUserInteraction(
			userinteraction.WithIO(strings.NewReader(""), out),
			userinteraction.WithoutColor(),
		)),
	}
}

func TestNewContainer_SelectsBackend(t *testing.T) {
	tests := []struct {
		backend Backend
		check   func(t *testing.T, c *Container)
	}{
		{BackendLangchain, func(t *testing.T, c *Container) {
			assert.IsType(t, &langchain.Agent{}, c.Agent)
		}},
		{BackendOpenAI, func(t *testing.T, c *Container) {
			assert.IsType(t, &executor.UseCase{}, c.Agent)
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			c, err := NewContainer(context.Background(), testConfig(tt.backend, "http://localhost:1"),
				testOptions(afero.NewMemMapFs(), &bytes.Buffer{})...)
			require.NoError(t, err)
			defer c.Close()

			tt.check(t, c)

			names := make([]string, 0)
			for _, tool := range c.Tools.All() {
				names = append(names, tool.Name())
			}
			assert.Equal(t, []string{"search", "wikipedia", "save_text_to_file"}, names)
		})
	}
}

func TestNewContainer_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig("anthropic", "")
	_, err := NewContainer(context.Background(), cfg, WithLogger(logger.NewNop()))
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestNewContainer_RejectsTemplateMarkersInPrompt(t *testing.T) {
	cfg := testConfig(BackendOpenAI, "")
	cfg.SystemPrompt = "Answer {{`{{`}}.input}}"
	_, err := NewContainer(context.Background(), cfg, testOptions(afero.NewMemMapFs(), &bytes.Buffer{})...)
	assert.Error(t, err)
}

const finalJSON = `{"topic":"France","summary":"Paris is the capital.","sources":["wikipedia.org"],"tools_used":["save_text_to_file"]}`

// fakeChatServer asks for one save_text_to_file call, then answers with
// finalJSON once the tool result is in the conversation.
func fakeChatServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))

		var body struct {
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		sawTool := false
		for _, m := range body.Messages {
			if m.Role == "tool" {
				sawTool = true
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if !sawTool {
			fmt.Fprint(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"finish_reason":"tool_calls","message":{"role":"assistant","content":"","tool_calls":[{"id":"call_1","type":"function","function":{"name":"save_text_to_file","arguments":"{\"__arg1\":\"interim notes\"}"}}]}}]}`)
			return
		}

		payload, err := json.Marshal(finalJSON)
		require.NoError(t, err)
		fmt.Fprintf(w, `{"id":"2","object":"chat.completion","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":%s}}]}`, payload)
	}))
}

func TestContainer_ResearchEndToEnd(t *testing.T) {
	for _, backend := range []Backend{BackendLangchain, BackendOpenAI} {
		t.Run(string(backend), func(t *testing.T) {
			srv := fakeChatServer(t)
			defer srv.Close()

			fs := afero.NewMemMapFs()
			out := &bytes.Buffer{}
			c, err := NewContainer(context.Background(), testConfig(backend, srv.URL), testOptions(fs, out)...)
			require.NoError(t, err)
			defer c.Close()

			outcome, err := c.Research.Research(context.Background(), "capital of France")
			require.NoError(t, err)
			require.NotNil(t, outcome.Response)
			assert.Equal(t, "France", outcome.Response.Topic)
			assert.Equal(t, 2, outcome.Iterations)

			_, err = c.Research.Save(context.Background(), outcome, "")
			require.NoError(t, err)

			data, err := afero.ReadFile(fs, "research_output.txt")
			require.NoError(t, err)
			text := string(data)
			assert.Contains(t, text, "\n\ninterim notes\n\n")
			assert.Contains(t, text, finalJSON)
			assert.Equal(t, 2, strings.Count(text, "--- Research Output ---"))

			assert.Contains(t, out.String(), "💾 save_text_to_file")
			assert.Contains(t, out.String(), "━━━ France ━━━")
		})
	}
}

func TestContainer_LogHTTPRoutesModelTraffic(t *testing.T) {
	for _, backend := range []Backend{BackendLangchain, BackendOpenAI} {
		t.Run(string(backend), func(t *testing.T) {
			srv := fakeChatServer(t)
			defer srv.Close()

			core, logs := observer.New(zapcore.InfoLevel)
			cfg := testConfig(backend, srv.URL)
			cfg.LogHTTP = true
			opts := append(testOptions(afero.NewMemMapFs(), &bytes.Buffer{}), WithLogger(logger.NewFromCore(core)))

			c, err := NewContainer(context.Background(), cfg, opts...)
			require.NoError(t, err)
			defer c.Close()

			_, err = c.Research.Research(context.Background(), "capital of France")
			require.NoError(t, err)

			requests := logs.FilterMessage("HTTP Request").All()
			require.Len(t, requests, 2)
			for _, entry := range requests {
				assert.Equal(t, http.MethodPost, entry.ContextMap()["method"])
				assert.Equal(t, srv.URL+"/chat/completions", entry.ContextMap()["url"])
			}
			assert.Len(t, logs.FilterMessage("HTTP Response").All(), 2)
		})
	}
}
