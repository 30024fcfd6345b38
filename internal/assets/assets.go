// Package assets holds the byte-storage backends for uploaded product images.
// Paths handed out by a backend are slash-separated, relative to the backend
// root and always start with the namespace they were stored under.
package assets

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrInvalidPath is returned for paths that would escape the storage root.
var ErrInvalidPath = errors.New("invalid asset path")

// Upload is one uploaded file as received from the client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes.
func (u Upload) Size() int64 {
	return int64(len(u.Data))
}

// Ext returns the lower-cased extension of the declared filename, dot included.
func (u Upload) Ext() string {
	return strings.ToLower(filepath.Ext(u.Filename))
}

// newPath generates a fresh path inside namespace, keeping the upload's extension.
func newPath(namespace string, u Upload) (string, error) {
	ns, err := cleanPath(namespace)
	if err != nil {
		return "", err
	}
	return path.Join(ns, uuid.NewString()+u.Ext()), nil
}

// cleanPath normalises p and rejects anything that is not a local, relative path.
func cleanPath(p string) (string, error) {
	p = strings.TrimPrefix(p, "/")
	if p == "" || !filepath.IsLocal(filepath.FromSlash(p)) {
		return "", errors.Wrapf(ErrInvalidPath, "%q", p)
	}
	return path.Clean(p), nil
}

// publicURL joins base and p, escaping each segment of p. It never touches disk.
func publicURL(base, p string) string {
	segments := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}
