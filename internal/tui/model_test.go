package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAsker struct {
	answer    string
	err       error
	questions []string
}

func (m *mockAsker) Ask(_ context.Context, q string) (string, error) {
	m.questions = append(m.questions, q)
	return m.answer, m.err
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func submit(t *testing.T, m Model, q string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(q)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestAskRoundTrip(t *testing.T) {
	svc := &mockAsker{answer: "Forty-two."}
	m := sized(t, New(svc, "corpus summary", 0))
	assert.Contains(t, m.View(), "corpus summary")

	m, cmd := submit(t, m, "  what is the answer?  ")
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Empty(t, m.input.Value())

	msg := cmd()
	next, _ := m.Update(msg)
	m = next.(Model)

	assert.Equal(t, []string{"what is the answer?"}, svc.questions)
	assert.False(t, m.busy)
	require.Len(t, m.history, 1)
	assert.Contains(t, m.renderTranscript(), "Forty-two.")
	assert.Contains(t, m.renderTranscript(), "Q: what is the answer?")
}

func TestAskError(t *testing.T) {
	svc := &mockAsker{err: errors.New("gemini: generation failed: quota")}
	m := sized(t, New(svc, "", 0))

	m, cmd := submit(t, m, "hello")
	next, _ := m.Update(cmd())
	m = next.(Model)

	assert.Contains(t, m.status, "quota")
	assert.Contains(t, m.renderTranscript(), "error:")
}

func TestEmptyInputAndBusyAreIgnored(t *testing.T) {
	svc := &mockAsker{answer: "x"}
	m := sized(t, New(svc, "", 0))

	_, cmd := submit(t, m, "   ")
	assert.Nil(t, cmd)

	m, cmd = submit(t, m, "first")
	require.NotNil(t, cmd)
	_, second := submit(t, m, "second")
	assert.Nil(t, second, "no new question while one is in flight")
}

func TestQuitKeys(t *testing.T) {
	m := New(&mockAsker{}, "", 0)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestViewBeforeResize(t *testing.T) {
	assert.Equal(t, "Loading...", New(&mockAsker{}, "", 0).View())
}
