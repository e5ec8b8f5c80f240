package mcp

import (
	"net/http"

	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides filtered course search.
	Search driving.SearchService

	// Query answers questions. Optional: without an LLM the ask tool is not offered.
	Query driving.QueryService

	// Catalog lists indexed courses. Optional.
	Catalog driving.CatalogService

	// Metrics is served at /metrics in HTTP mode. Optional.
	Metrics http.Handler
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
