// Package schema decodes the agent's final text into a ResearchResponse.
//
// The accepted shape is defined once, in research_response.schema.json. The
// same document is shown to the model as format instructions and used to
// validate what comes back.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed research_response.schema.json
var researchResponseSchema []byte

const schemaURL = "mem://research-agent/research_response.schema.json"

// ErrInvalidResponse wraps every parse failure.
var ErrInvalidResponse = errors.New("invalid research response")

var fencedBlock = regexp.MustCompile("(?s)```(?:json|JSON)?[ \t]*\r?\n?(.*?)```")

var _ output.ResponseParser = (*Parser)(nil)

type Parser struct {
	schema *jsonschema.Schema
}

func NewParser() (*Parser, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(researchResponseSchema))
	if err != nil {
		return nil, fmt.Errorf("decode response schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add response schema: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}

	return &Parser{schema: compiled}, nil
}

// Parse makes exactly one attempt. Text that is valid JSON as a whole is
// parsed as is; otherwise a fenced ```json block, if present, is used.
func (p *Parser) Parse(text string) (*entity.ResearchResponse, error) {
	payload := extractPayload(text)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty output", ErrInvalidResponse)
	}

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	if err := p.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	var resp entity.ResearchResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	return &resp, nil
}

func (p *Parser) FormatInstructions() string {
	var sb strings.Builder
	sb.WriteString("The output must be a single JSON object that conforms to the JSON schema below.\n")
	sb.WriteString("Every property listed under \"required\" must be present with the declared type.\n")
	sb.WriteString("For example, the object {\"topic\": \"Go\", \"summary\": \"...\", \"sources\": [\"go.dev\"], \"tools_used\": [\"search\"]}\n")
	sb.WriteString("is a well-formatted instance; an object missing \"sources\" is not.\n\n")
	sb.WriteString("Here is the output schema:\n```\n")
	sb.Write(bytes.TrimSpace(researchResponseSchema))
	sb.WriteString("\n```")
	return sb.String()
}

func extractPayload(text string) string {
	text = strings.TrimSpace(text)
	if json.Valid([]byte(text)) {
		return text
	}
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}
