// Package extract turns source documents into plain text. The variant is
// chosen by file extension; unknown extensions report domain.ErrUnsupported.
package extract

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ragchat/internal/domain"
)

var _ domain.Extractor = (*Registry)(nil)

// Registry dispatches extraction by lower-cased file extension.
type Registry struct {
	byExt map[string]domain.Extractor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]domain.Extractor)}
}

// Register binds ext (with or without the leading dot) to e.
func (r *Registry) Register(ext string, e domain.Extractor) {
	r.byExt[normalizeExt(ext)] = e
}

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byExt[normalizeExt(filepath.Ext(path))]
	return ok
}

// Extensions lists registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Extract returns the text of path. Unknown extensions return domain.ErrUnsupported;
// every other failure, including whitespace-only output, is a *domain.ExtractionError.
func (r *Registry) Extract(ctx context.Context, path string) (string, error) {
	e, ok := r.byExt[normalizeExt(filepath.Ext(path))]
	if !ok {
		return "", domain.ErrUnsupported
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", &domain.ExtractionError{Path: path, Err: err}
	}
	if info.Size() == 0 {
		return "", &domain.ExtractionError{Path: path, Err: domain.ErrEmptyFile}
	}
	text, err := e.Extract(ctx, path)
	if err != nil {
		return "", &domain.ExtractionError{Path: path, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &domain.ExtractionError{Path: path, Err: domain.ErrNoText}
	}
	return text, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
