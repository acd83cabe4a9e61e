// Package service wires extraction, embedding, storage and generation into
// the ingest and ask operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ragchat/internal/domain"
	"ragchat/internal/logging"
	"ragchat/internal/vectorstore"
)

// NoDocumentsAnswer is returned by Ask while the store holds no records.
const NoDocumentsAnswer = "No documents available. Please ingest documents first."

// Extractor dispatches a file to the extractor registered for its extension.
type Extractor interface {
	Supports(path string) bool
	Extract(ctx context.Context, path string) (string, error)
}

// Options configures a RAGServiceImpl.
type Options struct {
	DocumentsDir        string
	StorePath           string
	SummaryMaxSentences int
	Logger              *slog.Logger
}

// RAGServiceImpl answers questions from the single most similar stored document.
type RAGServiceImpl struct {
	extractor           Extractor
	embedder            domain.Embedder
	store               domain.VectorStore
	generator           domain.Generator
	summarizer          domain.Summarizer
	docsDir             string
	storePath           string
	summaryMaxSentences int
	logger              *slog.Logger

	// ingestMu serializes writers. stateMu pairs the live embedder with the
	// store contents: Ask reads under it across embed and match, writers take
	// it only to switch both together.
	ingestMu sync.Mutex
	stateMu  sync.RWMutex
}

var _ domain.RAGService = (*RAGServiceImpl)(nil)

// NewRAGService creates the service. summarizer may be nil.
func NewRAGService(
	extractor Extractor,
	embedder domain.Embedder,
	store domain.VectorStore,
	generator domain.Generator,
	summarizer domain.Summarizer,
	opts Options,
) *RAGServiceImpl {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &RAGServiceImpl{
		extractor:           extractor,
		embedder:            embedder,
		store:               store,
		generator:           generator,
		summarizer:          summarizer,
		docsDir:             opts.DocumentsDir,
		storePath:           opts.StorePath,
		summaryMaxSentences: opts.SummaryMaxSentences,
		logger:              opts.Logger,
	}
}

// Ingest rebuilds the store from every supported file in the documents folder
// and persists it. Files that cannot be extracted or embedded are skipped.
func (s *RAGServiceImpl) Ingest(ctx context.Context) (*domain.IngestReport, error) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	entries, err := os.ReadDir(s.docsDir)
	if err != nil {
		return nil, fmt.Errorf("read documents folder: %w", err)
	}

	report := &domain.IngestReport{}
	var docs []domain.Document
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(s.docsDir, entry.Name())
		if !s.extractor.Supports(path) {
			continue
		}
		s.logger.Info("ingest_file", "path", path)
		text, err := s.extractor.Extract(ctx, path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			s.skip(report, path, err)
			continue
		}
		docs = append(docs, domain.Document{Path: path, Content: text})
	}

	embedder := s.embedder
	if len(docs) > 0 {
		corpus := make([]string, len(docs))
		for i, d := range docs {
			corpus[i] = d.Content
		}
		embedder, err = s.fit(corpus)
		switch {
		case errors.Is(err, domain.ErrNoEmbeddableText):
			for _, d := range docs {
				s.skip(report, d.Path, err)
			}
			docs, embedder = nil, s.embedder
		case err != nil:
			return nil, fmt.Errorf("prepare embedder: %w", err)
		}
	}

	texts := make([]string, 0, len(docs))
	embeddings := make([][]float64, 0, len(docs))
	for _, d := range docs {
		vec, err := embedder.Embed(ctx, d.Content)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			s.logger.Warn("embed_failed", "path", d.Path, "error", err)
			report.Skipped = append(report.Skipped, domain.SkippedFile{Path: d.Path, Reason: err.Error()})
			continue
		}
		if isZero(vec) {
			s.skip(report, d.Path, domain.ErrNoEmbeddableText)
			continue
		}
		texts = append(texts, d.Content)
		embeddings = append(embeddings, vec)
	}

	if err := s.commit(embedder, texts, embeddings); err != nil {
		return nil, err
	}
	if s.storePath != "" {
		if err := s.store.Persist(s.storePath); err != nil {
			return nil, fmt.Errorf("persist store: %w", err)
		}
	}
	report.Stored = len(texts)

	if s.summarizer != nil && len(texts) > 0 {
		summary, err := s.summarizer.Summarize(texts, s.summaryMaxSentences)
		if err != nil {
			s.logger.Warn("summary_failed", "error", err)
		} else {
			report.Summary = summary
		}
	}
	s.logger.Info("ingest_complete", "stored", report.Stored, "skipped", len(report.Skipped))
	return report, nil
}

// Ask answers question using the best matching document as the only context.
// Generator failures are returned as *domain.GenerationError.
func (s *RAGServiceImpl) Ask(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	match, ok, err := s.retrieve(ctx, question)
	if err != nil {
		return "", err
	}
	if !ok {
		return NoDocumentsAnswer, nil
	}
	s.logger.Debug("best_match", "index", match.Index, "score", match.Score)

	answer, err := s.generator.Generate(ctx, BuildPrompt(match.Text, question))
	if err != nil {
		var ge *domain.GenerationError
		if !errors.As(err, &ge) {
			err = &domain.GenerationError{Provider: s.generator.Name(), Err: err}
		}
		return "", err
	}
	return answer, nil
}

// retrieve finds the stored document closest to question. ok is false when
// the store is empty.
func (s *RAGServiceImpl) retrieve(ctx context.Context, question string) (domain.Match, bool, error) {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	if s.store.Len() == 0 {
		return domain.Match{}, false, nil
	}
	qvec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return domain.Match{}, false, fmt.Errorf("embed question: %w", err)
	}
	match, err := s.store.BestMatch(qvec)
	if errors.Is(err, domain.ErrEmptyStore) {
		return domain.Match{}, false, nil
	}
	if err != nil {
		return domain.Match{}, false, err
	}
	return match, true, nil
}

// Load restores the persisted store, or rebuilds it from the documents folder
// when the state file is missing or corrupt. Other read errors are returned.
func (s *RAGServiceImpl) Load(ctx context.Context) (*domain.IngestReport, error) {
	texts, embeddings, err := vectorstore.Load(s.storePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.logger.Info("store_missing", "path", s.storePath)
		return s.Ingest(ctx)
	case errors.Is(err, domain.ErrCorruptState):
		s.logger.Warn("store_corrupt", "path", s.storePath, "error", err)
		return s.Ingest(ctx)
	case err != nil:
		return nil, err
	}

	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()
	embedder := s.embedder
	if len(texts) > 0 {
		if embedder, err = s.fit(texts); err != nil {
			return nil, fmt.Errorf("prepare embedder: %w", err)
		}
	}
	if err := s.commit(embedder, texts, embeddings); err != nil {
		return nil, err
	}
	s.logger.Info("store_restored", "path", s.storePath, "records", len(texts))
	return &domain.IngestReport{Stored: len(texts)}, nil
}

// fit prepares an embedder on corpus. Embedders that can fit a copy leave the
// live one serving questions until commit. Callers hold ingestMu.
func (s *RAGServiceImpl) fit(corpus []string) (domain.Embedder, error) {
	if f, ok := s.embedder.(domain.CorpusFitter); ok {
		return f.Fit(corpus)
	}
	if err := s.embedder.Prepare(corpus); err != nil {
		return nil, err
	}
	return s.embedder, nil
}

// commit switches the store contents and the embedder that produced them in
// one step.
func (s *RAGServiceImpl) commit(embedder domain.Embedder, texts []string, embeddings [][]float64) error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if err := s.store.ReplaceAll(texts, embeddings); err != nil {
		return err
	}
	s.embedder = embedder
	return nil
}

func (s *RAGServiceImpl) skip(report *domain.IngestReport, path string, err error) {
	s.logger.Warn("ingest_skip", "path", path, "error", err)
	report.Skipped = append(report.Skipped, domain.SkippedFile{Path: path, Reason: err.Error()})
}

func isZero(vec []float64) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}

// BuildPrompt lays out the context block followed by the question block.
func BuildPrompt(passage, question string) string {
	var b strings.Builder
	b.WriteString("Answer the question using ONLY the context below.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(passage)
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(question)
	b.WriteString("\n")
	return b.String()
}
