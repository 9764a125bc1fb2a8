package prompts

import (
	"bytes"
	"errors"
	"strings"
	"text/template"

	"research-agent/internal/application/port/output"
)

// ErrTemplateMarkers is returned when a rendered prompt still contains "{{".
// langchaingo parses the system message as a Go template a second time.
var ErrTemplateMarkers = errors.New("rendered prompt contains template markers")

type ToolInfo struct {
	Name        string
	Description string
}

type SystemPromptData struct {
	Tools              []ToolInfo
	FormatInstructions string
}

func GenerateSystemPrompt(baseTemplate string, tools []output.ToolPort, formatInstructions string) (string, error) {
	toolInfos := make([]ToolInfo, 0, len(tools))
	for _, tool := range tools {
		toolInfos = append(toolInfos, ToolInfo{
			Name:        tool.Name(),
			Description: strings.Join(strings.Fields(tool.Description()), " "),
		})
	}

	data := SystemPromptData{
		Tools:              toolInfos,
		FormatInstructions: formatInstructions,
	}

	tmpl, err := template.New("system").Option("missingkey=error").Parse(baseTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	result := buf.String()
	if strings.Contains(result, "{{") {
		return "", ErrTemplateMarkers
	}

	return result, nil
}
