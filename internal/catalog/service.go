package catalog

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"catalog/internal/assets"
	"catalog/internal/models"
	"catalog/internal/store"
)

// ProductRepository is the record store products are persisted in.
type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	SoftDelete(ctx context.Context, id uint) error
	Query(ctx context.Context, q store.Query) ([]models.Product, int64, error)
}

// Input carries the editable product fields.
type Input struct {
	Name  string
	SKU   string
	Price decimal.Decimal
	Stock int
}

func (in *Input) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.SKU = strings.TrimSpace(in.SKU)
	switch {
	case in.Name == "":
		return &ValidationError{Field: "name", Message: "is required"}
	case in.Price.IsNegative():
		return &ValidationError{Field: "price", Message: "must not be negative"}
	case in.Stock < 0:
		return &ValidationError{Field: "stock", Message: "must not be negative"}
	}
	return nil
}

// Service runs the product operations. The image is always resolved before
// the record is written, so a failed upload never produces a record.
type Service struct {
	repo   ProductRepository
	images *ImageManager
	log    logrus.FieldLogger
}

// NewService wires a service over repo and images.
func NewService(repo ProductRepository, images *ImageManager, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, images: images, log: log}
}

// Images exposes the image manager the service resolves uploads with.
func (s *Service) Images() *ImageManager {
	return s.images
}

// CreateProduct validates in, stores image if present and inserts the record.
func (s *Service) CreateProduct(ctx context.Context, in Input, image Option[assets.Upload]) (*models.Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	path, err := s.images.ResolveOnCreate(ctx, image)
	if err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:  in.Name,
		SKU:   in.SKU,
		Price: in.Price,
		Stock: in.Stock,
		Image: path,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logOrphan(path, err)
		return nil, &RecordStoreError{Op: "create", Err: err}
	}

	s.withImageURL(p)
	s.log.WithFields(logrus.Fields{"product_id": p.ID, "image": p.Image}).Info("product created")
	return p, nil
}

// UpdateProduct overwrites the editable fields of product id. Without a new
// image the stored reference is kept.
func (s *Service) UpdateProduct(ctx context.Context, id uint, in Input, image Option[assets.Upload]) (*models.Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	path, err := s.images.ResolveOnUpdate(ctx, image, p.Image)
	if err != nil {
		return nil, err
	}

	p.Name = in.Name
	p.SKU = in.SKU
	p.Price = in.Price
	p.Stock = in.Stock
	p.Image = path
	if err := s.repo.Update(ctx, p); err != nil {
		if image.IsSome() {
			s.logOrphan(path, err)
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, &RecordStoreError{Op: "update", Err: err}
	}

	s.withImageURL(p)
	s.log.WithFields(logrus.Fields{"product_id": p.ID, "image": p.Image}).Info("product updated")
	return p, nil
}

// DeleteProduct soft-deletes product id. Its image file is left in place.
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{ID: id}
		}
		return &RecordStoreError{Op: "soft-delete", Err: err}
	}
	s.log.WithField("product_id", id).Info("product deleted")
	return nil
}

func (s *Service) find(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, &RecordStoreError{Op: "find", Err: err}
	}
	return p, nil
}

func (s *Service) logOrphan(path string, cause error) {
	if path == "" {
		return
	}
	s.log.WithError(cause).WithField("path", path).Error("record write failed, stored image is orphaned")
}
