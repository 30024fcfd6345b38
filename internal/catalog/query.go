package catalog

import (
	"context"
	"strings"

	"catalog/internal/models"
	"catalog/internal/store"
)

// PageSize is the fixed number of products per listing page.
const PageSize = 10

// Filter selects what ListProducts returns.
type Filter struct {
	Search string
	Page   int
}

// Page is one slice of the filtered, newest-first product listing.
type Page struct {
	Items    []models.Product `json:"data"`
	Total    int64            `json:"total"`
	Page     int              `json:"current_page"`
	PerPage  int              `json:"per_page"`
	LastPage int              `json:"last_page"`
	Search   string           `json:"search"`
}

// ListProducts returns the requested page of live products matching
// f.Search on name or sku, each with ImageURL filled in. A page past the end
// yields no items.
func (s *Service) ListProducts(ctx context.Context, f Filter) (*Page, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	search := strings.TrimSpace(f.Search)

	items, total, err := s.repo.Query(ctx, store.Query{
		Search:   search,
		Page:     page,
		PageSize: PageSize,
	})
	if err != nil {
		return nil, &RecordStoreError{Op: "query", Err: err}
	}

	for i := range items {
		s.withImageURL(&items[i])
	}

	lastPage := int((total + PageSize - 1) / PageSize)
	if lastPage < 1 {
		lastPage = 1
	}
	return &Page{
		Items:    items,
		Total:    total,
		Page:     page,
		PerPage:  PageSize,
		LastPage: lastPage,
		Search:   search,
	}, nil
}

// GetProduct returns a live product with ImageURL filled in.
func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	s.withImageURL(p)
	return p, nil
}

func (s *Service) withImageURL(p *models.Product) {
	p.ImageURL = nil
	if p.HasImage() {
		p.ImageURL = s.images.ResolveURL(p.Image)
	}
}
