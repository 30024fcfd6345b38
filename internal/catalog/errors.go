package catalog

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrProductNotFound matches every NotFoundError through errors.Is.
var ErrProductNotFound = errors.New("product not found")

// ValidationError reports a field that breaks a product invariant.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AssetStoreError wraps a failed call against the asset backend.
type AssetStoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *AssetStoreError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("asset store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("asset store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *AssetStoreError) Unwrap() error { return e.Err }

// NotFoundError is returned when a product does not exist or is soft-deleted.
type NotFoundError struct {
	ID uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}

// RecordStoreError wraps a failed call against the record store.
type RecordStoreError struct {
	Op  string
	Err error
}

func (e *RecordStoreError) Error() string {
	return fmt.Sprintf("record store %s: %v", e.Op, e.Err)
}

func (e *RecordStoreError) Unwrap() error { return e.Err }
