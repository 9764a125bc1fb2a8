package userinteraction

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
	"research-agent/internal/infrastructure/htmltext"

	"github.com/fatih/color"
)

var _ output.UserInteractionPort = (*ConsoleUserInteraction)(nil)

const (
	toolInputPreview  = 80
	toolResultPreview = 160
)

type ConsoleUserInteraction struct {
	reader *bufio.Reader
	out    io.Writer

	title   *color.Color
	label   *color.Color
	tool    *color.Color
	success *color.Color
	failure *color.Color
	dim     *color.Color
}

type Option func(*ConsoleUserInteraction)

func WithIO(in io.Reader, out io.Writer) Option {
	return func(c *ConsoleUserInteraction) {
		c.reader = bufio.NewReader(in)
		c.out = out
	}
}

func WithoutColor() Option {
	return func(c *ConsoleUserInteraction) {
		for _, col := range c.colors() {
			col.DisableColor()
		}
	}
}

func NewConsoleUserInteraction(opts ...Option) *ConsoleUserInteraction {
	c := &ConsoleUserInteraction{
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		title:   color.New(color.FgCyan, color.Bold),
		label:   color.New(color.Bold),
		tool:    color.New(color.FgYellow, color.Bold),
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		dim:     color.New(color.Faint),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (u *ConsoleUserInteraction) colors() []*color.Color {
	return []*color.Color{u.title, u.label, u.tool, u.success, u.failure, u.dim}
}

func (u *ConsoleUserInteraction) AskQuery(ctx context.Context, prompt string) (string, error) {
	fmt.Fprintf(u.out, "%s ", prompt)
	return u.readLine()
}

// Confirm accepts y, yes, д and да in any case. Anything else, including an
// empty line, is a no.
func (u *ConsoleUserInteraction) Confirm(ctx context.Context, question string) (bool, error) {
	fmt.Fprintf(u.out, "%s [y/n] ", question)

	answer, err := u.readLine()
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes", "д", "да":
		return true, nil
	default:
		return false, nil
	}
}

func (u *ConsoleUserInteraction) readLine() (string, error) {
	line, err := u.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", fmt.Errorf("failed to read user input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (u *ConsoleUserInteraction) ShowResponse(ctx context.Context, resp *entity.ResearchResponse) {
	if resp == nil {
		return
	}

	u.title.Fprintf(u.out, "\n━━━ %s ━━━\n", resp.Topic)
	fmt.Fprintln(u.out, resp.Summary)

	u.label.Fprint(u.out, "\nSources:")
	u.printList(resp.Sources)

	u.label.Fprint(u.out, "Tools used:")
	u.printList(resp.ToolsUsed)
}

func (u *ConsoleUserInteraction) printList(items []string) {
	if len(items) == 0 {
		u.dim.Fprintln(u.out, " none")
		return
	}
	fmt.Fprintln(u.out)
	for _, item := range items {
		fmt.Fprintf(u.out, "  - %s\n", item)
	}
}

func (u *ConsoleUserInteraction) ShowParseError(ctx context.Context, err error, raw string) {
	u.failure.Fprintf(u.out, "\nError parsing response: %v\n", err)
	u.label.Fprintln(u.out, "Raw Response -")
	fmt.Fprintln(u.out, raw)
}

func (u *ConsoleUserInteraction) ShowSaved(ctx context.Context, path string) {
	u.success.Fprintf(u.out, "✓ Saved to %s\n", path)
}

func (u *ConsoleUserInteraction) ShowToolStart(ctx context.Context, toolName, input string) {
	icon := toolIcon(toolName)
	u.tool.Fprintf(u.out, "\n%s %s\n", icon, toolName)
	if input != "" {
		u.dim.Fprintf(u.out, "   %s\n", preview(input, toolInputPreview))
	}
}

func (u *ConsoleUserInteraction) ShowToolResult(ctx context.Context, toolName, result string, isError bool) {
	if isError {
		u.failure.Fprint(u.out, "❌ Error: ")
		u.dim.Fprintln(u.out, preview(result, toolResultPreview))
		return
	}
	u.success.Fprintf(u.out, "✓ %s\n", preview(result, toolResultPreview))
}

func toolIcon(toolName string) string {
	switch entity.ToolName(toolName) {
	case entity.ToolSearch:
		return "🔎"
	case entity.ToolWikipedia:
		return "📚"
	case entity.ToolSaveToFile:
		return "💾"
	default:
		return "🔧"
	}
}

// preview flattens s onto one line and shortens it for display.
func preview(s string, maxRunes int) string {
	flat := strings.Join(strings.Fields(s), " ")
	cut := htmltext.Truncate(flat, maxRunes)
	if cut != flat {
		return cut + "..."
	}
	return flat
}
