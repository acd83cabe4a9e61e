package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyStore indicates a similarity query against a store with no records.
	ErrEmptyStore = errors.New("vector store is empty")

	// ErrDimensionMismatch indicates vectors of different lengths were compared or stored together.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrLengthMismatch indicates texts and embeddings of different lengths.
	ErrLengthMismatch = errors.New("texts and embeddings length mismatch")

	// ErrExtraction is the class of per-file extraction failures.
	ErrExtraction = errors.New("extraction failed")

	// ErrNoText indicates extraction produced only whitespace.
	ErrNoText = errors.New("no readable text")

	// ErrEmptyFile indicates a zero-byte source file.
	ErrEmptyFile = errors.New("empty file")

	// ErrUnsupported indicates a file extension with no registered extractor.
	ErrUnsupported = errors.New("unsupported file type")

	// ErrCorruptState is the class of unreadable or malformed persisted stores.
	ErrCorruptState = errors.New("corrupt vector store state")

	// ErrGeneration is the class of failures from the text-generation API.
	ErrGeneration = errors.New("generation failed")

	// ErrNoEmbeddableText indicates text that maps to no embedding terms.
	ErrNoEmbeddableText = errors.New("no embeddable text")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)

// ExtractionError reports that a single file could not be turned into text.
// Ingestion skips the file and continues.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Is makes every ExtractionError match ErrExtraction.
func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// CorruptStateError reports a persisted store that cannot be restored.
type CorruptStateError struct {
	Path string
	Err  error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("restore %s: %v", e.Path, e.Err)
}

func (e *CorruptStateError) Unwrap() error { return e.Err }

// Is makes every CorruptStateError match ErrCorruptState.
func (e *CorruptStateError) Is(target error) bool { return target == ErrCorruptState }

// GenerationError wraps a failure returned by an external LLM provider.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is makes every GenerationError match ErrGeneration.
func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }
