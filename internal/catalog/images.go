package catalog

import (
	"context"

	"github.com/sirupsen/logrus"

	"catalog/internal/assets"
)

// ImageNamespace is the directory product images are stored under.
const ImageNamespace = "products"

// AssetStore is the byte storage product images live in.
type AssetStore interface {
	Store(ctx context.Context, namespace string, file assets.Upload) (string, error)
	Exists(ctx context.Context, path string) (bool, error)
	Delete(ctx context.Context, path string) (bool, error)
	PublicURL(path string) string
}

// ImageManager keeps a product's image reference pointing at an existing
// file or at nothing. Paths it returns are what gets persisted on the
// product; URLs are only ever derived from them.
//
// There is no coordination between concurrent updates of the same product,
// and no transaction spans the asset store and the record store: a failure
// after a file was stored leaves that file orphaned.
type ImageManager struct {
	store AssetStore
	log   logrus.FieldLogger
}

// NewImageManager returns a manager storing images in store.
func NewImageManager(store AssetStore, log logrus.FieldLogger) *ImageManager {
	return &ImageManager{store: store, log: log}
}

// ResolveOnCreate stores file if present and returns the path to persist.
func (m *ImageManager) ResolveOnCreate(ctx context.Context, file Option[assets.Upload]) (string, error) {
	u, ok := file.Get()
	if !ok {
		return "", nil
	}
	return m.upload(ctx, u)
}

// ResolveOnUpdate returns the path to persist for a product currently
// referencing current. Without a new file nothing is touched and current is
// returned as is. With one, DeleteAsset runs on current and then the new file
// is stored; only a store failure is returned.
//
// A failure from DeleteAsset is logged at warn level and dropped, so a broken
// existence check or delete never blocks the replacement. When the existence
// check itself fails, Delete is not called at all and the old file may stay
// behind as an orphan.
//
// If the upload fails after the old file was removed, the product still
// references the removed file until the caller writes a new path.
func (m *ImageManager) ResolveOnUpdate(ctx context.Context, file Option[assets.Upload], current string) (string, error) {
	u, ok := file.Get()
	if !ok {
		return current, nil
	}

	if current != "" {
		if _, err := m.DeleteAsset(ctx, current); err != nil {
			m.log.WithError(err).WithField("path", current).Warn("failed to delete replaced image")
		}
	}
	return m.upload(ctx, u)
}

// DeleteAsset removes path if it exists and reports whether anything was
// deleted. Deleting a missing file is not an error.
func (m *ImageManager) DeleteAsset(ctx context.Context, path string) (bool, error) {
	exists, err := m.store.Exists(ctx, path)
	if err != nil {
		return false, &AssetStoreError{Op: "exists", Path: path, Err: err}
	}
	if !exists {
		return false, nil
	}

	deleted, err := m.store.Delete(ctx, path)
	if err != nil {
		return false, &AssetStoreError{Op: "delete", Path: path, Err: err}
	}
	if deleted {
		m.log.WithField("path", path).Debug("image deleted")
	}
	return deleted, nil
}

// ResolveURL maps a stored path to its public URL, nil when there is none.
func (m *ImageManager) ResolveURL(path string) *string {
	if path == "" {
		return nil
	}
	u := m.store.PublicURL(path)
	return &u
}

func (m *ImageManager) upload(ctx context.Context, u assets.Upload) (string, error) {
	path, err := m.store.Store(ctx, ImageNamespace, u)
	if err != nil {
		return "", &AssetStoreError{Op: "store", Err: err}
	}
	m.log.WithFields(logrus.Fields{"path": path, "bytes": u.Size()}).Debug("image stored")
	return path, nil
}
