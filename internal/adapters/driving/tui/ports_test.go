package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPorts(t *testing.T) {
	q, s, c := &mockQueryService{}, &mockSearchService{}, &mockCatalogService{}

	ports := NewPorts(q, s, c)

	assert.Equal(t, q, ports.Query)
	assert.Equal(t, s, ports.Search)
	assert.Equal(t, c, ports.Catalog)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		want  error
	}{
		{name: "all set", ports: NewPorts(&mockQueryService{}, &mockSearchService{}, &mockCatalogService{})},
		{name: "catalog optional", ports: NewPorts(&mockQueryService{}, &mockSearchService{}, nil)},
		{name: "missing query", ports: NewPorts(nil, &mockSearchService{}, nil), want: ErrMissingQueryService},
		{name: "missing search", ports: NewPorts(&mockQueryService{}, nil, nil), want: ErrMissingSearchService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
