package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for coursemate resources.
	uriScheme = "coursemate://"
)

// registerResources registers the catalog resources when a catalog is configured.
func (s *Server) registerResources() {
	if s.ports.Catalog == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "courses",
		Name:        "courses",
		Description: "Catalog of all indexed courses",
		MIMEType:    "application/json",
	}, s.handleCoursesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "courses/{title}",
		Name:        "course-outline",
		Description: "Instructor, link and lesson outline of one course",
		MIMEType:    "application/json",
	}, s.handleCourseResource)
}

// handleCoursesResource returns the whole catalog.
func (s *Server) handleCoursesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	courses, err := s.ports.Catalog.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	if courses == nil {
		courses = []domain.CatalogEntry{}
	}
	return jsonResource(req.Params.URI, courses)
}

// handleCourseResource returns one course's catalog entry. The title in the
// URI is resolved like a search filter, so near matches work.
func (s *Server) handleCourseResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractCourseTitle(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	title, ok, err := s.ports.Catalog.ResolveCourseName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolving course: %w", err)
	}
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	courses, err := s.ports.Catalog.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	for _, c := range courses {
		if c.Title == title {
			return jsonResource(req.Params.URI, c)
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCourseTitle extracts the title from a URI like coursemate://courses/{title}.
func extractCourseTitle(uri string) string {
	const prefix = uriScheme + "courses/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	title, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(title)
}
