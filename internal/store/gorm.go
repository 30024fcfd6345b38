package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"catalog/internal/models"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GormProducts is the postgres-backed product store.
type GormProducts struct {
	db *gorm.DB
}

// NewGormProducts wraps an open gorm connection.
func NewGormProducts(db *gorm.DB) *GormProducts {
	return &GormProducts{db: db}
}

// FindByID loads the live product id.
func (s *GormProducts) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find product %d", id)
	}
	return &p, nil
}

// Create inserts p, filling in its id and timestamps.
func (s *GormProducts) Create(ctx context.Context, p *models.Product) error {
	return errors.Wrap(s.db.WithContext(ctx).Create(p).Error, "create product")
}

// Update writes every column, so an emptied field is persisted as well.
func (s *GormProducts) Update(ctx context.Context, p *models.Product) error {
	res := s.db.WithContext(ctx).Model(p).
		Select("name", "sku", "price", "stock", "image", "updated_at").
		Updates(p)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update product %d", p.ID)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete sets deleted_at on product id.
func (s *GormProducts) SoftDelete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete product %d", id)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Query counts the matches first and skips the row fetch when the page
// starts at or beyond that count.
func (s *GormProducts) Query(ctx context.Context, q Query) ([]models.Product, int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.Product{}).
		Scopes(search(q)).
		Count(&total).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}

	items := []models.Product{}
	if total == 0 || int64(q.Offset()) >= total {
		return items, total, nil
	}

	err = s.db.WithContext(ctx).
		Scopes(search(q), latest, page(q)).
		Find(&items).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list products")
	}
	return items, total, nil
}

func search(q Query) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term := q.term()
		if term == "" {
			return db
		}
		like := "%" + likeEscaper.Replace(term) + "%"
		return db.Where("(name ILIKE ? OR sku ILIKE ?)", like, like)
	}
}

func latest(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

func page(q Query) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(q.Offset()).Limit(q.PageSize)
	}
}
