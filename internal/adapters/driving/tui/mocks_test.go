package tui

import (
	"context"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

type mockQueryService struct {
	resp *domain.QueryResponse
	err  error
}

func (m *mockQueryService) Query(context.Context, string, string) (*domain.QueryResponse, error) {
	if m.resp == nil && m.err == nil {
		return &domain.QueryResponse{Answer: "answer", SessionID: "s1"}, nil
	}
	return m.resp, m.err
}

type mockSearchService struct {
	outcome *domain.SearchOutcome
	err     error
}

func (m *mockSearchService) Search(context.Context, domain.SearchQuery) (*domain.SearchOutcome, error) {
	if m.outcome == nil && m.err == nil {
		return &domain.SearchOutcome{Status: domain.SearchStatusOK}, nil
	}
	return m.outcome, m.err
}

type mockCatalogService struct {
	courses []domain.CatalogEntry
	err     error
}

func (m *mockCatalogService) Catalog(context.Context) ([]domain.CatalogEntry, error) {
	return m.courses, m.err
}

func (m *mockCatalogService) ResolveCourseName(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (m *mockCatalogService) Stats(context.Context) (domain.IndexStats, error) {
	return domain.IndexStats{Courses: len(m.courses)}, nil
}

func (m *mockCatalogService) Clear(context.Context) error {
	return nil
}
