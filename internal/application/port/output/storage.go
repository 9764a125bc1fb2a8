package output

import "context"

// ResearchStore persists raw research output. An empty filename selects the
// store's default file.
type ResearchStore interface {
	Append(ctx context.Context, text, filename string) (string, error)
}
