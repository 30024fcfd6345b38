package assets

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Disk stores assets as files below a root directory, served publicly
// under baseURL.
type Disk struct {
	root    string
	baseURL string
}

// NewDisk creates root if needed.
func NewDisk(root, baseURL string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create storage root %s", root)
	}
	return &Disk{root: root, baseURL: baseURL}, nil
}

// Root returns the directory files are written to.
func (d *Disk) Root() string {
	return d.root
}

// Store writes u under namespace with a generated name and returns its path.
func (d *Disk) Store(ctx context.Context, namespace string, u Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := newPath(namespace, u)
	if err != nil {
		return "", err
	}

	dst := d.full(p)
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create directory %s", dir)
	}

	// write to a temp file first so a half-written image is never visible under p
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(u.Data); err != nil {
		tmp.Close()
		return "", errors.Wrapf(err, "write %s", p)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrapf(err, "close %s", p)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", errors.Wrapf(err, "chmod %s", p)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", errors.Wrapf(err, "rename into %s", p)
	}
	return p, nil
}

// Exists reports whether p is a regular file under the root.
func (d *Disk) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	clean, err := cleanPath(p)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(d.full(clean))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, errors.Wrapf(err, "stat %s", clean)
	}
	return info.Mode().IsRegular(), nil
}

// Delete removes p. A missing file reports false without error.
func (d *Disk) Delete(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	clean, err := cleanPath(p)
	if err != nil {
		return false, err
	}
	err = os.Remove(d.full(clean))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, errors.Wrapf(err, "remove %s", clean)
	}
	return true, nil
}

// PublicURL maps p under the base URL without touching disk.
func (d *Disk) PublicURL(p string) string {
	return publicURL(d.baseURL, p)
}

func (d *Disk) full(p string) string {
	return filepath.Join(d.root, filepath.FromSlash(p))
}
