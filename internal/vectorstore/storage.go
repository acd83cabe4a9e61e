package vectorstore

import (
	"fmt"
	"os"
	"path/filepath"

	"ragchat/internal/domain"
)

// Save writes the records to path, replacing any existing file.
// The data goes to a temporary sibling first and is renamed into place.
func Save(path string, texts []string, embeddings [][]float64) error {
	data, err := Encode(texts, embeddings)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Load reads records written by Save. A file that cannot be decoded is
// reported as a *domain.CorruptStateError; I/O failures are returned as is.
func Load(path string) ([]string, [][]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read store: %w", err)
	}
	texts, embeddings, err := Decode(data)
	if err != nil {
		return nil, nil, &domain.CorruptStateError{Path: path, Err: err}
	}
	return texts, embeddings, nil
}
