package mcp

import (
	"context"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	outcome *domain.SearchOutcome
	err     error
	last    domain.SearchQuery
}

func (m *mockSearchService) Search(_ context.Context, q domain.SearchQuery) (*domain.SearchOutcome, error) {
	m.last = q
	if m.outcome == nil && m.err == nil {
		return &domain.SearchOutcome{Status: domain.SearchStatusOK}, nil
	}
	return m.outcome, m.err
}

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	resp         *domain.QueryResponse
	err          error
	lastQuestion string
	lastSession  string
}

func (m *mockQueryService) Query(_ context.Context, question, sessionID string) (*domain.QueryResponse, error) {
	m.lastQuestion = question
	m.lastSession = sessionID
	return m.resp, m.err
}

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	courses []domain.CatalogEntry
	resolve map[string]string
	err     error
}

func (m *mockCatalogService) Catalog(_ context.Context) ([]domain.CatalogEntry, error) {
	return m.courses, m.err
}

func (m *mockCatalogService) ResolveCourseName(_ context.Context, name string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	if title, ok := m.resolve[name]; ok {
		return title, true, nil
	}
	if len(m.courses) == 0 {
		return "", false, nil
	}
	return m.courses[0].Title, true, nil
}

func (m *mockCatalogService) Stats(_ context.Context) (domain.IndexStats, error) {
	return domain.IndexStats{Courses: len(m.courses)}, m.err
}

func (m *mockCatalogService) Clear(_ context.Context) error {
	return m.err
}
