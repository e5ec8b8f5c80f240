package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

type stubNormaliser struct {
	types    []string
	priority int
	output   string
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.types }
func (s *stubNormaliser) Priority() int { return s.priority }
func (s *stubNormaliser) Normalise(_ context.Context, _ *domain.RawDocument) (string, error) {
	return s.output, nil
}

func TestMIMETypeForPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"course1.txt", "text/plain"},
		{"/a/b/COURSE.TXT", "text/plain"},
		{"notes.md", "text/markdown"},
		{"slides.pdf", "application/pdf"},
		{"lesson.HTM", "text/html"},
		{"handout.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"image.png", ""},
		{"noext", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, MIMETypeForPath(tt.path))
		})
	}
}

func TestSupportedExtensions(t *testing.T) {
	exts := SupportedExtensions()
	assert.Contains(t, exts, ".txt")
	assert.Contains(t, exts, ".md")
	assert.Contains(t, exts, ".pdf")
	assert.IsIncreasing(t, exts)
}

func TestRegistry_PriorityWins(t *testing.T) {
	low := &stubNormaliser{types: []string{"text/plain"}, priority: 5, output: "low"}
	high := &stubNormaliser{types: []string{"text/plain"}, priority: 50, output: "high"}
	r := NewRegistry(low, high)

	text, err := r.Normalise(context.Background(), &domain.RawDocument{URI: "a.txt", MIMEType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, "high", text)
}

func TestRegistry_DetectsByExtension(t *testing.T) {
	r := NewRegistry(&stubNormaliser{types: []string{"text/markdown"}, priority: 50, output: "md"})

	text, err := r.Normalise(context.Background(), &domain.RawDocument{URI: "/c/intro.md"})
	require.NoError(t, err)
	assert.Equal(t, "md", text)
}

func TestRegistry_StripsParameters(t *testing.T) {
	r := NewRegistry(&stubNormaliser{types: []string{"text/plain"}, priority: 5, output: "ok"})

	text, err := r.Normalise(context.Background(), &domain.RawDocument{URI: "x", MIMEType: "text/plain; charset=utf-8"})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestRegistry_Unsupported(t *testing.T) {
	r := NewRegistry(&stubNormaliser{types: []string{"text/plain"}, priority: 5})

	_, err := r.Normalise(context.Background(), &domain.RawDocument{URI: "photo.png"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = r.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_SupportedMIMETypes(t *testing.T) {
	r := NewRegistry(
		&stubNormaliser{types: []string{"text/plain"}, priority: 5},
		&stubNormaliser{types: []string{"text/markdown", "text/plain"}, priority: 50},
	)
	assert.Equal(t, []string{"text/markdown", "text/plain"}, r.SupportedMIMETypes())
}
