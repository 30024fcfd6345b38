package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"catalog/internal/models"
)

// MemoryProducts keeps products in process memory. Safe for concurrent use.
type MemoryProducts struct {
	now func() time.Time

	mu     sync.RWMutex
	nextID uint
	rows   map[uint]models.Product
}

// NewMemoryProducts returns an empty store. now defaults to time.Now.
func NewMemoryProducts(now func() time.Time) *MemoryProducts {
	if now == nil {
		now = time.Now
	}
	return &MemoryProducts{
		now:  now,
		rows: make(map[uint]models.Product),
	}
}

// FindByID returns a copy of the live product id.
func (s *MemoryProducts) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.rows[id]
	if !ok || p.IsDeleted() {
		return nil, ErrNotFound
	}
	return &p, nil
}

// Create assigns p an id and timestamps and stores a copy.
func (s *MemoryProducts) Create(ctx context.Context, p *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := s.now()
	p.ID = s.nextID
	p.CreatedAt = now
	p.UpdatedAt = now
	p.DeletedAt = gorm.DeletedAt{}

	row := *p
	row.ImageURL = nil
	s.rows[p.ID] = row
	return nil
}

// Update overwrites the editable fields of a live product.
func (s *MemoryProducts) Update(ctx context.Context, p *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[p.ID]
	if !ok || row.IsDeleted() {
		return ErrNotFound
	}
	row.Name = p.Name
	row.SKU = p.SKU
	row.Price = p.Price
	row.Stock = p.Stock
	row.Image = p.Image
	row.UpdatedAt = s.now()
	s.rows[p.ID] = row

	p.CreatedAt = row.CreatedAt
	p.UpdatedAt = row.UpdatedAt
	return nil
}

// SoftDelete marks product id deleted.
func (s *MemoryProducts) SoftDelete(ctx context.Context, id uint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok || row.IsDeleted() {
		return ErrNotFound
	}
	row.DeletedAt = gorm.DeletedAt{Time: s.now(), Valid: true}
	s.rows[id] = row
	return nil
}

// Query returns one page of matches and the total match count.
func (s *MemoryProducts) Query(ctx context.Context, q Query) ([]models.Product, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	term := q.term()

	s.mu.RLock()
	matched := make([]models.Product, 0, len(s.rows))
	for _, p := range s.rows {
		if p.IsDeleted() {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.SKU), term) {
			continue
		}
		matched = append(matched, p)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	total := int64(len(matched))
	start := q.Offset()
	if start >= len(matched) {
		return []models.Product{}, total, nil
	}
	end := len(matched)
	if q.PageSize > 0 && start+q.PageSize < end {
		end = start + q.PageSize
	}
	return matched[start:end], total, nil
}
