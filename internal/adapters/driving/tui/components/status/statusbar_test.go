package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 0, bar.ResultCount())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestStatusBar_InitAndUpdate(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Nil(t, bar.Init())

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestStatusBar_View_States(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		message  string
		count    int
		expected string
	}{
		{"ready", StateReady, "", 0, "Ready"},
		{"thinking", StateThinking, "", 0, "Thinking..."},
		{"searching", StateSearching, "", 0, "Searching..."},
		{"error with message", StateError, "boom", 0, "Error: boom"},
		{"error without message", StateError, "", 0, "Error"},
		{"help", StateHelp, "", 0, "Help"},
		{"results", StateResults, "", 4, "4 results"},
		{"ready with message", StateReady, "New conversation", 0, "New conversation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(120)
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)
			bar.SetResultCount(tt.count)

			assert.Contains(t, bar.View(), tt.expected)
		})
	}
}

func TestStatusBar_View_Hints(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)

	assert.Contains(t, bar.View(), "q: quit")

	bar.SetState(StateResults)
	bar.SetResultCount(2)
	assert.Contains(t, bar.View(), "n: new search")

	bar.SetHints(keymap.DefaultKeyMap().ChatHelp())
	assert.Contains(t, bar.View(), "ctrl+n: new chat")

	bar.SetHints(nil)
	assert.NotContains(t, bar.View(), "ctrl+n")
}

func TestStatusBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetResultCount(3)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.ResultCount())
}

func TestStatusBar_NarrowWidth(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(5)

	assert.NotEmpty(t, bar.View())
}
