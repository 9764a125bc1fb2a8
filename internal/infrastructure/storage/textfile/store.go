package textfile

import (
	"context"
	"fmt"
	"os"
	"time"

	"research-agent/internal/application/port/output"

	"github.com/spf13/afero"
)

const (
	DefaultFilename = "research_output.txt"
	TimestampLayout = "2006-01-02 15:04:05"
	entryHeader     = "--- Research Output ---"
)

var _ output.ResearchStore = (*Store)(nil)

// Store appends framed research entries to flat text files. Files are created
// on first use and never truncated.
type Store struct {
	fs              afero.Fs
	defaultFilename string
	now             func() time.Time
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithDefaultFilename(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.defaultFilename = name
		}
	}
}

func New(fs afero.Fs, opts ...Option) *Store {
	s := &Store{
		fs:              fs,
		defaultFilename: DefaultFilename,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func NewOS(opts ...Option) *Store {
	return New(afero.NewOsFs(), opts...)
}

func (s *Store) Append(ctx context.Context, text, filename string) (string, error) {
	if filename == "" {
		filename = s.defaultFilename
	}

	f, err := s.fs.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filename, err)
	}

	if _, err := f.WriteString(FormatEntry(text, s.now())); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", filename, err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", filename, err)
	}

	return filename, nil
}

// FormatEntry frames text as a header line, a timestamp line, the text itself
// and a blank separator.
func FormatEntry(text string, ts time.Time) string {
	return fmt.Sprintf("%s\nTimestamp: %s\n\n%s\n\n", entryHeader, ts.Format(TimestampLayout), text)
}
