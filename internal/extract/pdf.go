package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"ragchat/internal/logging"
)

// ErrPDFToolNotFound indicates the pdftotext binary is missing from PATH.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// PageCounter reports how many pages a PDF has.
type PageCounter func(path string) (int, error)

// PDFExtractor extracts text page by page with pdftotext. A page that fails
// or has no text contributes nothing; the rest of the document is kept.
type PDFExtractor struct {
	command         string
	runner          CommandRunner
	pageCount       PageCounter
	pageTimeout     time.Duration
	stripTimestamps bool
	logger          *slog.Logger
}

// PDFOption configures a PDFExtractor.
type PDFOption func(*PDFExtractor)

// WithRunner replaces the command runner.
func WithRunner(r CommandRunner) PDFOption { return func(p *PDFExtractor) { p.runner = r } }

// WithPageCounter replaces the pdfcpu page counter.
func WithPageCounter(c PageCounter) PDFOption { return func(p *PDFExtractor) { p.pageCount = c } }

// WithCommand sets the pdftotext binary name or path.
func WithCommand(name string) PDFOption { return func(p *PDFExtractor) { p.command = name } }

// WithPageTimeout bounds each pdftotext invocation.
func WithPageTimeout(d time.Duration) PDFOption { return func(p *PDFExtractor) { p.pageTimeout = d } }

// WithStripTimestamps enables removal of H:MM transcript markers.
func WithStripTimestamps(on bool) PDFOption { return func(p *PDFExtractor) { p.stripTimestamps = on } }

// WithPDFLogger sets the logger used for page-level warnings.
func WithPDFLogger(l *slog.Logger) PDFOption { return func(p *PDFExtractor) { p.logger = l } }

// NewPDF returns a PDF extractor using pdfcpu for page counting and pdftotext for text.
func NewPDF(opts ...PDFOption) *PDFExtractor {
	p := &PDFExtractor{
		command:     "pdftotext",
		runner:      ExecRunner{},
		pageCount:   api.PageCountFile,
		pageTimeout: 60 * time.Second,
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckAvailable reports ErrPDFToolNotFound when command is not on PATH.
func CheckAvailable(command string) error {
	if command == "" {
		command = "pdftotext"
	}
	if _, err := exec.LookPath(command); err != nil {
		return fmt.Errorf("%w: %s", ErrPDFToolNotFound, command)
	}
	return nil
}

// InstallInstructions describes how to get pdftotext.
func InstallInstructions() string {
	return `pdftotext is part of poppler:
  macOS:         brew install poppler
  Debian/Ubuntu: apt install poppler-utils
  Fedora:        dnf install poppler-utils`
}

// Extract concatenates the text of every page of the PDF at path.
func (p *PDFExtractor) Extract(ctx context.Context, path string) (string, error) {
	pages, err := p.pageCount(path)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	var b strings.Builder
	for page := 1; page <= pages; page++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := p.extractPage(ctx, path, page)
		if err != nil {
			p.logger.Warn("pdf_page_failed", "path", path, "page", page, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		b.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			b.WriteByte('\n')
		}
	}
	out := b.String()
	if p.stripTimestamps {
		out = StripTimestamps(out)
	}
	return out, nil
}

func (p *PDFExtractor) extractPage(ctx context.Context, path string, page int) (string, error) {
	if p.pageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.pageTimeout)
		defer cancel()
	}
	n := strconv.Itoa(page)
	out, err := p.runner.Run(ctx, p.command, "-f", n, "-l", n, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	// pdftotext terminates each page with a form feed
	return strings.TrimRight(string(out), "\f"), nil
}
