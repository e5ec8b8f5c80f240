// Package mcp provides an MCP (Model Context Protocol) server adapter for
// coursemate. It lets AI assistants search course content, ask questions
// through the tool-calling pipeline and browse the course catalog.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
