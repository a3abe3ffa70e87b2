package port

import "context"

// ReportStore persists rendered compliance exports
type ReportStore interface {
	// Save atomically writes content at a slash-separated path relative to the store root
	Save(ctx context.Context, path string, content []byte) error

	// Location returns where a saved path lives on disk
	Location(path string) string
}
