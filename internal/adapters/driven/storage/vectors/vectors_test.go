package vectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

func TestCosine(t *testing.T) {
	s, err := Cosine([]float32{1, 0}, []float32{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s, 1e-9)

	s, err = Cosine([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, s, 1e-9)

	s, err = Cosine([]float32{1, 1}, []float32{-1, -1})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, s, 1e-9)

	s, err = Cosine([]float32{0, 0}, []float32{1, 1})
	require.NoError(t, err)
	assert.Zero(t, s)

	_, err = Cosine([]float32{1}, []float32{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestTopK_StableOnTies(t *testing.T) {
	matches := []driven.VectorMatch{
		{Record: driven.VectorRecord{ID: "a"}, Score: 0.5},
		{Record: driven.VectorRecord{ID: "b"}, Score: 0.9},
		{Record: driven.VectorRecord{ID: "c"}, Score: 0.5},
		{Record: driven.VectorRecord{ID: "d"}, Score: 0.5},
	}

	top := TopK(matches, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "b", top[0].Record.ID)
	assert.Equal(t, "a", top[1].Record.ID)
	assert.Equal(t, "c", top[2].Record.ID)
}

func TestTopK_LimitLargerThanInput(t *testing.T) {
	matches := []driven.VectorMatch{{Score: 0.1}, {Score: 0.2}}
	assert.Len(t, TopK(matches, 10), 2)
}

func TestEncodeDecode(t *testing.T) {
	v := []float32{0, 1.5, -2.25, 3.4028235e38}
	buf := Encode(v)
	assert.Len(t, buf, 16)
	assert.Equal(t, v, Decode(buf))
}
