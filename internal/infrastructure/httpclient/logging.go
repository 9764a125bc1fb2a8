package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"research-agent/internal/application/port/output"
)

// maxLoggedBody caps request bodies that are logged as plain text.
const maxLoggedBody = 2000

type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

// NewLoggingClient returns an HTTP client that logs every outgoing request and
// its response status. The container hands it to the chat model and to the
// search and Wikipedia tools alike.
func NewLoggingClient(base http.RoundTripper, logger output.LoggerPort) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Transport: &loggingTransport{base: base, logger: logger},
	}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			t.logger.Error("HTTP Request body unreadable", "url", req.URL.String(), "error", err)
			return nil, fmt.Errorf("read request body: %w", err)
		}
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	}

	t.logger.Info("HTTP Request",
		"method", req.Method,
		"url", req.URL.String(),
		"body", loggableBody(bodyBytes),
	)

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.logger.Error("HTTP Request failed", "url", req.URL.String(), "error", err)
		return nil, err
	}

	t.logger.Info("HTTP Response",
		"url", req.URL.String(),
		"status", resp.Status,
		"statusCode", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	return resp, nil
}

// loggableBody decodes JSON bodies so they nest in the log line. Anything else
// is logged as text.
func loggableBody(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err == nil {
		return decoded
	}
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody]) + "..."
	}
	return string(body)
}
