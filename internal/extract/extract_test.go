package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/domain"
)

// mockRunner is a test double for CommandRunner keyed by the page argument.
type mockRunner struct {
	pages map[string]string
	fail  map[string]error
	calls [][]string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	page := args[1]
	if err, ok := m.fail[page]; ok {
		return nil, err
	}
	return []byte(m.pages[page]), nil
}

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) Extract(context.Context, string) (string, error) { return s.text, s.err }

type stubTranscriber struct {
	text string
	err  error
	path string
}

func (s *stubTranscriber) Transcribe(_ context.Context, path string) (string, error) {
	s.path = path
	return s.text, s.err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func pageCount(n int) PageCounter {
	return func(string) (int, error) { return n, nil }
}

func TestPDF_ConcatenatesPages(t *testing.T) {
	runner := &mockRunner{pages: map[string]string{
		"1": "Page one text\n\f",
		"2": "   \n\f",
		"3": "Page three text",
	}}
	p := NewPDF(WithRunner(runner), WithPageCounter(pageCount(3)), WithCommand("pdftotext"))

	text, err := p.Extract(context.Background(), "/docs/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Page one text\nPage three text\n", text)

	require.Len(t, runner.calls, 3)
	assert.Equal(t, []string{"pdftotext", "-f", "1", "-l", "1", "-layout", "-enc", "UTF-8", "/docs/a.pdf", "-"}, runner.calls[0])
}

func TestPDF_PageFailureDoesNotAbortDocument(t *testing.T) {
	runner := &mockRunner{
		pages: map[string]string{"1": "kept", "3": "also kept"},
		fail:  map[string]error{"2": errors.New("bad xref")},
	}
	p := NewPDF(WithRunner(runner), WithPageCounter(pageCount(3)))

	text, err := p.Extract(context.Background(), "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "kept\nalso kept\n", text)
}

func TestPDF_UnreadableFile(t *testing.T) {
	p := NewPDF(WithRunner(&mockRunner{}), WithPageCounter(func(string) (int, error) {
		return 0, errors.New("no header")
	}))

	_, err := p.Extract(context.Background(), "a.pdf")
	assert.ErrorContains(t, err, "read pdf")
}

func TestPDF_StripTimestamps(t *testing.T) {
	runner := &mockRunner{pages: map[string]string{"1": "0:00 Welcome back 12:34 to the show"}}
	p := NewPDF(WithRunner(runner), WithPageCounter(pageCount(1)), WithStripTimestamps(true))

	text, err := p.Extract(context.Background(), "a.pdf")
	require.NoError(t, err)
	assert.NotContains(t, text, "0:00")
	assert.NotContains(t, text, "12:34")
	assert.Contains(t, text, "Welcome back")
}

func TestPDF_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPDF(WithRunner(&mockRunner{}), WithPageCounter(pageCount(2)))

	_, err := p.Extract(ctx, "a.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStripTimestamps(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0:00 intro", " intro"},
		{"at 12:34 and 1:05", "at  and "},
		{"ratio 123:456 stays", "ratio 123:456 stays"},
		{"no markers", "no markers"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, StripTimestamps(tc.in), tc.in)
	}
}

func TestAudio_DelegatesToTranscriber(t *testing.T) {
	tr := &stubTranscriber{text: "hello from the podcast"}
	text, err := NewAudio(tr).Extract(context.Background(), "/docs/ep1.mp3")
	require.NoError(t, err)
	assert.Equal(t, "hello from the podcast", text)
	assert.Equal(t, "/docs/ep1.mp3", tr.path)

	_, err = NewAudio(nil).Extract(context.Background(), "x.mp3")
	assert.Error(t, err)
}

func TestRegistry_Dispatch(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry()
	r.Register("pdf", stubExtractor{text: "pdf text"})
	r.Register(".MP3", stubExtractor{text: "audio text"})

	assert.Equal(t, []string{".mp3", ".pdf"}, r.Extensions())
	assert.True(t, r.Supports("a.PDF"))
	assert.False(t, r.Supports("notes.txt"))

	text, err := r.Extract(context.Background(), writeFile(t, dir, "Report.PDF", "%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "pdf text", text)

	text, err = r.Extract(context.Background(), writeFile(t, dir, "talk.mp3", "ID3"))
	require.NoError(t, err)
	assert.Equal(t, "audio text", text)

	_, err = r.Extract(context.Background(), writeFile(t, dir, "notes.txt", "plain"))
	assert.ErrorIs(t, err, domain.ErrUnsupported)
	assert.NotErrorIs(t, err, domain.ErrExtraction)
}

func TestRegistry_Failures(t *testing.T) {
	dir := t.TempDir()
	cause := errors.New("boom")

	tests := []struct {
		name    string
		ext     domain.Extractor
		content string
		want    error
	}{
		{name: "zero byte", ext: stubExtractor{text: "never"}, content: "", want: domain.ErrEmptyFile},
		{name: "whitespace only", ext: stubExtractor{text: " \n\t "}, content: "x", want: domain.ErrNoText},
		{name: "extractor error", ext: stubExtractor{err: cause}, content: "x", want: cause},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRegistry()
			r.Register(".pdf", tc.ext)
			path := writeFile(t, dir, strings.ReplaceAll(tc.name, " ", "_")+".pdf", tc.content)

			_, err := r.Extract(context.Background(), path)
			assert.ErrorIs(t, err, domain.ErrExtraction)
			assert.ErrorIs(t, err, tc.want)
			var xe *domain.ExtractionError
			require.ErrorAs(t, err, &xe)
			assert.Equal(t, path, xe.Path)
		})
	}

	r := NewRegistry()
	r.Register(".pdf", stubExtractor{text: "x"})
	_, err := r.Extract(context.Background(), filepath.Join(dir, "missing.pdf"))
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCheckAvailable(t *testing.T) {
	err := CheckAvailable("definitely-not-a-real-binary-ragchat")
	assert.ErrorIs(t, err, ErrPDFToolNotFound)
	assert.Contains(t, InstallInstructions(), "poppler-utils")
}
