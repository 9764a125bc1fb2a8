package schema

import (
	"encoding/json"
	"testing"

	"research-agent/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser()
	require.NoError(t, err)
	return p
}

func TestParse_FranceExample(t *testing.T) {
	p := newTestParser(t)

	resp, err := p.Parse(`{"topic":"France","summary":"Paris is the capital.","sources":["wikipedia.org"],"tools_used":["Search"]}`)

	require.NoError(t, err)
	assert.Equal(t, "France", resp.Topic)
	assert.Equal(t, "Paris is the capital.", resp.Summary)
	assert.Equal(t, []string{"wikipedia.org"}, resp.Sources)
	assert.Equal(t, []string{"Search"}, resp.ToolsUsed)
}

func TestParse_RoundTrip(t *testing.T) {
	p := newTestParser(t)

	cases := []entity.ResearchResponse{
		{Topic: "Go", Summary: "A language.", Sources: []string{"go.dev", "wikipedia.org"}, ToolsUsed: []string{"search", "wikipedia"}},
		{Topic: "", Summary: "", Sources: []string{}, ToolsUsed: []string{}},
		{Topic: "Ünïcödé \"quoted\"", Summary: "line1\nline2", Sources: []string{"a"}, ToolsUsed: []string{"save_text_to_file"}},
	}

	for _, want := range cases {
		data, err := json.Marshal(want)
		require.NoError(t, err)

		got, err := p.Parse(string(data))
		require.NoError(t, err)
		assert.Equal(t, want, *got)
	}
}

func TestParse_FencedJSON(t *testing.T) {
	p := newTestParser(t)

	text := "```json\n{\"topic\":\"Rust\",\"summary\":\"s\",\"sources\":[],\"tools_used\":[\"wikipedia\"]}\n```"
	resp, err := p.Parse(text)

	require.NoError(t, err)
	assert.Equal(t, "Rust", resp.Topic)
	assert.Equal(t, []string{"wikipedia"}, resp.ToolsUsed)
}

func TestParse_FenceInsideStringField(t *testing.T) {
	p := newTestParser(t)

	text := `{"topic":"Go","summary":"Print with ` + "```" + `fmt.Println(\"hi\")` + "```" + ` in Go.","sources":["go.dev"],"tools_used":["search"]}`
	resp, err := p.Parse(text)

	require.NoError(t, err)
	assert.Equal(t, "Go", resp.Topic)
	assert.Equal(t, "Print with ```fmt.Println(\"hi\")``` in Go.", resp.Summary)
	assert.Equal(t, []string{"go.dev"}, resp.Sources)
}

func TestParse_FencedWithoutLanguage(t *testing.T) {
	p := newTestParser(t)

	text := "Here you go:\n```\n{\"topic\":\"T\",\"summary\":\"S\",\"sources\":[\"x\"],\"tools_used\":[]}\n```\n"
	resp, err := p.Parse(text)

	require.NoError(t, err)
	assert.Equal(t, "T", resp.Topic)
}

func TestParse_IgnoresExtraKeys(t *testing.T) {
	p := newTestParser(t)

	resp, err := p.Parse(`{"topic":"T","summary":"S","sources":[],"tools_used":[],"confidence":0.9}`)

	require.NoError(t, err)
	assert.Equal(t, "T", resp.Topic)
}

func TestParse_Failures(t *testing.T) {
	p := newTestParser(t)

	cases := map[string]string{
		"empty":             "",
		"whitespace":        "   \n\t",
		"plain text":        "Paris is the capital of France.",
		"truncated json":    `{"topic":"France","summary":"Paris`,
		"missing sources":   `{"topic":"France","summary":"Paris","tools_used":[]}`,
		"missing topic":     `{"summary":"Paris","sources":[],"tools_used":[]}`,
		"null sources":      `{"topic":"France","summary":"Paris","sources":null,"tools_used":[]}`,
		"string sources":    `{"topic":"France","summary":"Paris","sources":"wikipedia.org","tools_used":[]}`,
		"number topic":      `{"topic":42,"summary":"Paris","sources":[],"tools_used":[]}`,
		"non-string item":   `{"topic":"France","summary":"Paris","sources":[1],"tools_used":[]}`,
		"array top level":   `[{"topic":"France"}]`,
		"trailing garbage":  `{"topic":"France","summary":"Paris","sources":[],"tools_used":[]} extra`,
		"prose around json": `Sure! {"topic":"France","summary":"Paris","sources":[],"tools_used":[]}`,
		"empty fence":       "```json\n```",
	}

	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			var (
				resp *entity.ResearchResponse
				err  error
			)
			require.NotPanics(t, func() {
				resp, err = p.Parse(text)
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidResponse)
			assert.Nil(t, resp)
		})
	}
}

func TestFormatInstructions_EmbedsSchema(t *testing.T) {
	p := newTestParser(t)

	instructions := p.FormatInstructions()

	assert.Contains(t, instructions, `"tools_used"`)
	assert.Contains(t, instructions, `"required"`)
	assert.NotContains(t, instructions, "{{")
	assert.True(t, json.Valid(researchResponseSchema))
}
