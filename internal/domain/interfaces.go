package domain

import "context"

// Document is a source file after text extraction.
type Document struct {
	Path    string
	Content string
}

// Match is the best stored record for a query embedding.
type Match struct {
	Index int
	Text  string
	Score float64
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// CorpusFitter is implemented by embedders whose vector space is derived from
// the corpus. Fit returns a new embedder prepared on corpus and leaves the
// receiver unchanged.
type CorpusFitter interface {
	Fit(corpus []string) (Embedder, error)
}

// Extractor turns a source file into plain text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// VectorStore holds (text, embedding) records and answers top-1 similarity queries.
type VectorStore interface {
	Append(text string, embedding []float64) error
	ReplaceAll(texts []string, embeddings [][]float64) error
	BestMatch(query []float64) (Match, error)
	Persist(path string) error
	Len() int
	Texts() []string
}

// Generator is the external text-generation model.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Summarizer produces a brief overview of the ingested documents.
type Summarizer interface {
	Summarize(documents []string, maxSentences int) (string, error)
}

// RAGService defines the operations exposed by the application core.
type RAGService interface {
	Ingest(ctx context.Context) (*IngestReport, error)
	Ask(ctx context.Context, question string) (string, error)
}

// SkippedFile records a document that ingestion left out and why.
type SkippedFile struct {
	Path   string
	Reason string
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	Stored  int
	Skipped []SkippedFile
	Summary string
}
