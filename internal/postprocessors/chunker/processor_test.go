package chunker

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

func reconstruct(windows []string, overlap int) string {
	var b strings.Builder
	for i, w := range windows {
		r := []rune(w)
		if i > 0 {
			r = r[overlap:]
		}
		b.WriteString(string(r))
	}
	return b.String()
}

func TestNew_Defaults(t *testing.T) {
	p := New()
	assert.Equal(t, DefaultChunkSize, p.ChunkSize())
	assert.Equal(t, DefaultChunkOverlap, p.Overlap())
	assert.Equal(t, "chunker", p.Name())
}

func TestNew_OverlapClamped(t *testing.T) {
	p := New(WithChunkSize(100), WithOverlap(100))
	assert.Equal(t, 25, p.Overlap())

	p = New(WithChunkSize(-1), WithOverlap(-5))
	assert.Equal(t, DefaultChunkSize, p.ChunkSize())
	assert.Equal(t, DefaultChunkOverlap, p.Overlap())
}

func TestWindows_EmptyAndShort(t *testing.T) {
	p := New(WithChunkSize(50), WithOverlap(10))

	assert.Empty(t, slices.Collect(p.Windows("")))
	assert.Equal(t, []string{"Just one sentence."}, slices.Collect(p.Windows("Just one sentence.")))
}

func TestWindows_Reconstruction(t *testing.T) {
	texts := []string{
		strings.Repeat("Variables hold values. Functions return results! Do loops end? ", 20),
		strings.Repeat("nowhitespaceatallinthistext", 15),
		strings.Repeat("words without any sentence punctuation ", 30),
		strings.Repeat("Ünïcödé tëxt wïth äccents. ", 40),
	}
	configs := []struct{ size, overlap int }{
		{50, 10}, {80, 0}, {120, 30}, {37, 36},
	}

	for _, text := range texts {
		for _, cfg := range configs {
			p := New(WithChunkSize(cfg.size), WithOverlap(cfg.overlap))
			windows := slices.Collect(p.Windows(text))
			require.NotEmpty(t, windows)

			assert.Equal(t, text, reconstruct(windows, p.Overlap()))
			for _, w := range windows {
				assert.LessOrEqual(t, len([]rune(w)), p.ChunkSize())
			}
		}
	}
}

func TestWindows_PrefersSentenceBoundary(t *testing.T) {
	p := New(WithChunkSize(40), WithOverlap(5))
	text := "First sentence is here. Second sentence follows it and keeps going for a while."

	windows := slices.Collect(p.Windows(text))
	require.GreaterOrEqual(t, len(windows), 2)
	assert.Equal(t, "First sentence is here.", windows[0])
	assert.Equal(t, text, reconstruct(windows, p.Overlap()))
}

func TestWindows_FallsBackToWhitespace(t *testing.T) {
	p := New(WithChunkSize(12), WithOverlap(0))

	windows := slices.Collect(p.Windows("alpha beta gamma delta"))
	assert.Equal(t, []string{"alpha beta ", "gamma delta"}, windows)
}

func TestWindows_HardCut(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(2))

	windows := slices.Collect(p.Windows("abcdefghijklmnopqrstuvwxyz"))
	assert.Equal(t, "abcdefghij", windows[0])
	assert.Equal(t, "ijklmnopqr", windows[1])
	assert.Equal(t, "abcdefghijklmnopqrstuvwxyz", reconstruct(windows, 2))
}

func TestWindows_StopsWhenConsumerStops(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(0))
	count := 0
	for range p.Windows(strings.Repeat("x", 100)) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestChunkCourse(t *testing.T) {
	course := &domain.Course{
		Title: "Intro to X",
		Lessons: []domain.Lesson{
			{Number: 0, Title: "Welcome", Link: "https://x/0", Content: "Short welcome."},
			{Number: 1, Title: "Empty"},
			{Number: 2, Title: "Long", Content: strings.Repeat("A sentence about X. ", 10)},
		},
	}
	p := New(WithChunkSize(60), WithOverlap(10))

	chunks := p.ChunkCourse(course)
	require.Greater(t, len(chunks), 2)

	first := chunks[0]
	assert.Equal(t, "Course Intro to X Lesson 0 content: Short welcome.", first.Content)
	assert.Equal(t, 0, first.LessonNumber)
	assert.Equal(t, "https://x/0", first.LessonLink)
	assert.Equal(t, 0, first.Position)

	for i, c := range chunks {
		assert.Equal(t, i, c.Position)
		assert.Equal(t, "Intro to X", c.CourseTitle)
		assert.NotEqual(t, 1, c.LessonNumber, "empty lesson must produce no chunks")
		if c.LessonNumber == 2 {
			assert.True(t, strings.HasPrefix(c.Content, "Course Intro to X Lesson 2 content: "))
		}
	}

	again := p.ChunkCourse(course)
	assert.Equal(t, chunks[1].ID, again[1].ID)
	assert.NotEqual(t, chunks[0].ID, chunks[1].ID)
}

func TestChunkID(t *testing.T) {
	assert.Equal(t, ChunkID("A", 0), ChunkID("A", 0))
	assert.NotEqual(t, ChunkID("A", 0), ChunkID("B", 0))
	assert.NotEqual(t, ChunkID("A", 0), ChunkID("A", 1))
}
