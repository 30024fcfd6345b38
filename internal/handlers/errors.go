package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"catalog/internal/catalog"
)

// fail maps a catalog error to a response. Store failures are logged and
// answered with a generic message.
func (h *handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)

	var (
		validation *catalog.ValidationError
		assetErr   *catalog.AssetStoreError
		recordErr  *catalog.RecordStoreError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid.",
			"errors":  fieldErrors{validation.Field: {validation.Error()}},
		})
	case errors.Is(err, catalog.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	case errors.As(err, &assetErr):
		h.Log.WithError(err).WithField("op", assetErr.Op).Error("asset store failure")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong."})
	case errors.As(err, &recordErr):
		h.Log.WithError(err).WithField("op", recordErr.Op).Error("record store failure")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong."})
	default:
		h.Log.WithError(err).Error("unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong."})
	}
}
