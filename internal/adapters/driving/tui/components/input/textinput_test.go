package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/styles"
)

func TestNewInput(t *testing.T) {
	in := NewInput(styles.DefaultStyles(), "Ask: ", "placeholder")

	require.NotNil(t, in)
	assert.Equal(t, "", in.Value())
	assert.Equal(t, "Ask: ", in.Label())
	assert.True(t, in.Focused())
}

func TestNewInput_NilStyles(t *testing.T) {
	in := NewInput(nil, "x", "")

	require.NotNil(t, in)
	assert.NotNil(t, in.styles)
}

func TestNewSearchInput(t *testing.T) {
	in := NewSearchInput(nil)

	assert.Contains(t, in.View(), "Search")
}

func TestNewQuestionInput(t *testing.T) {
	in := NewQuestionInput(nil)

	assert.Contains(t, in.View(), "Ask")
}

func TestInput_Init(t *testing.T) {
	in := NewQuestionInput(nil)

	assert.NotNil(t, in.Init())
}

func TestInput_Update(t *testing.T) {
	in := NewQuestionInput(nil)

	updated, _ := in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})

	assert.Equal(t, in, updated)
	assert.Equal(t, "a", in.Value())
}

func TestInput_SetValueAndReset(t *testing.T) {
	in := NewQuestionInput(nil)

	in.SetValue("what is a router?")
	assert.Equal(t, "what is a router?", in.Value())

	in.Reset()
	assert.Empty(t, in.Value())
}

func TestInput_FocusBlur(t *testing.T) {
	in := NewQuestionInput(nil)

	in.Blur()
	assert.False(t, in.Focused())

	in.Focus()
	assert.True(t, in.Focused())
}

func TestInput_SetWidth(t *testing.T) {
	tests := []struct {
		name  string
		width int
	}{
		{"normal width", 100},
		{"narrow width", 10},
		{"zero width", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewSearchInput(nil)
			in.SetWidth(tt.width)
			assert.Equal(t, tt.width, in.Width())
			assert.GreaterOrEqual(t, in.textinput.Width, 20)
		})
	}
}
