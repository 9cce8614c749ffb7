package services

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/quzhan/internal/client/client"
	"github.com/dmitrijs2005/quzhan/internal/client/models"
)

const (
	searchPath   = "/api/v1/search/search"
	hotTermsPath = "/api/v1/search/hot-terms"
)

type SearchService interface {
	Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error)
	HotTerms(ctx context.Context, limit int) ([]models.HotTerm, error)
}

type searchService struct {
	client *client.Client
}

func NewSearchService(c *client.Client) SearchService {
	return &searchService{client: c}
}

func (s *searchService) Search(ctx context.Context, sq models.SearchQuery) (*models.SearchResult, error) {
	q := map[string]any{"q": sq.Q}
	if sq.Page > 0 {
		q["page"] = sq.Page
	}
	if sq.Size > 0 {
		q["size"] = sq.Size
	}
	setIf(q, "sort_by", sq.SortBy)
	setIf(q, "sort_order", sq.SortOrder)

	var out models.SearchResult
	err := s.client.Do(ctx, s.client.Services.PostSearch, &client.Request{
		Method: http.MethodGet,
		Path:   searchPath,
		Query:  q,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *searchService) HotTerms(ctx context.Context, limit int) ([]models.HotTerm, error) {
	q := map[string]any{}
	if limit > 0 {
		q["limit"] = limit
	}

	var out []models.HotTerm
	err := s.client.Do(ctx, s.client.Services.PostSearch, &client.Request{
		Method: http.MethodGet,
		Path:   hotTermsPath,
		Query:  q,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
