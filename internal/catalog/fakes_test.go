package catalog_test

import (
	"context"
	"sync"

	"catalog/internal/assets"
	"catalog/internal/models"
	"catalog/internal/store"
)

// recordingAssets wraps an in-memory asset store, counting calls and
// failing the ones a test asks it to.
type recordingAssets struct {
	*assets.Memory

	mu        sync.Mutex
	stores    int
	exists    []string
	deletes   []string
	urls      int
	storeErr  error
	existsErr error
	deleteErr error
}

func newRecordingAssets() *recordingAssets {
	return &recordingAssets{Memory: assets.NewMemory("http://localhost:8080/storage")}
}

func (r *recordingAssets) Store(ctx context.Context, ns string, u assets.Upload) (string, error) {
	r.mu.Lock()
	r.stores++
	err := r.storeErr
	r.mu.Unlock()
	if err != nil {
		return "", err
	}
	return r.Memory.Store(ctx, ns, u)
}

func (r *recordingAssets) Exists(ctx context.Context, p string) (bool, error) {
	r.mu.Lock()
	r.exists = append(r.exists, p)
	err := r.existsErr
	r.mu.Unlock()
	if err != nil {
		return false, err
	}
	return r.Memory.Exists(ctx, p)
}

func (r *recordingAssets) Delete(ctx context.Context, p string) (bool, error) {
	r.mu.Lock()
	r.deletes = append(r.deletes, p)
	err := r.deleteErr
	r.mu.Unlock()
	if err != nil {
		return false, err
	}
	return r.Memory.Delete(ctx, p)
}

func (r *recordingAssets) PublicURL(p string) string {
	r.mu.Lock()
	r.urls++
	r.mu.Unlock()
	return r.Memory.PublicURL(p)
}

// flakyRepo fails the record-store operations a test asks it to.
type flakyRepo struct {
	*store.MemoryProducts

	createErr error
	updateErr error
	queryErr  error
	creates   int
}

func (f *flakyRepo) Create(ctx context.Context, p *models.Product) error {
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	return f.MemoryProducts.Create(ctx, p)
}

func (f *flakyRepo) Update(ctx context.Context, p *models.Product) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.MemoryProducts.Update(ctx, p)
}

func (f *flakyRepo) Query(ctx context.Context, q store.Query) ([]models.Product, int64, error) {
	if f.queryErr != nil {
		return nil, 0, f.queryErr
	}
	return f.MemoryProducts.Query(ctx, q)
}
