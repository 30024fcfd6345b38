package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"catalog/internal/assets"
	"catalog/internal/catalog"
)

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type productForm struct {
	Name  string `form:"name" binding:"required,max=255"`
	SKU   string `form:"sku" binding:"required,max=255"`
	Price string `form:"price" binding:"required"`
	Stock *int   `form:"stock" binding:"required,min=0"`
}

// fieldErrors is the 422 body: field name to messages.
type fieldErrors map[string][]string

func (fe fieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// bindProduct parses and validates the form. On failure it has already
// written the 422 response.
func (h *handler) bindProduct(c *gin.Context) (catalog.Input, catalog.Option[assets.Upload], bool) {
	var (
		form  productForm
		in    catalog.Input
		image = catalog.None[assets.Upload]()
		errs  = fieldErrors{}
	)

	if err := c.ShouldBind(&form); err != nil {
		collectBindErrors(errs, err)
	}

	if form.Price != "" {
		price, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(form.Price), ",", "."))
		switch {
		case err != nil:
			errs.add("price", "The price must be a number.")
		case price.IsNegative():
			errs.add("price", "The price must be at least 0.")
		default:
			in.Price = price
		}
	}

	upload, err := h.readImage(c)
	if err != nil {
		errs.add("image", err.Error())
	} else if upload != nil {
		image = catalog.Some(*upload)
	}

	if len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid.",
			"errors":  errs,
		})
		return in, image, false
	}

	in.Name = form.Name
	in.SKU = form.SKU
	in.Stock = *form.Stock
	return in, image, true
}

// readImage returns nil when the request carries no image file.
func (h *handler) readImage(c *gin.Context) (*assets.Upload, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New("The image failed to upload.")
	}

	u := assets.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
	}
	if !allowedImageExt[u.Ext()] {
		return nil, errors.New("The image must be a file of type: jpeg, png, jpg, gif, webp.")
	}
	if fh.Size > h.MaxUploadBytes {
		return nil, fmt.Errorf("The image may not be greater than %d kilobytes.", h.MaxUploadBytes/1024)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("The image failed to upload.")
	}
	defer f.Close()

	u.Data, err = io.ReadAll(io.LimitReader(f, h.MaxUploadBytes+1))
	if err != nil {
		return nil, errors.New("The image failed to upload.")
	}
	if u.Size() > h.MaxUploadBytes {
		return nil, fmt.Errorf("The image may not be greater than %d kilobytes.", h.MaxUploadBytes/1024)
	}
	return &u, nil
}

func collectBindErrors(errs fieldErrors, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// strconv failures from the form decoder: only stock is numeric
		errs.add("stock", "The stock must be an integer.")
		return
	}
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			errs.add(field, fmt.Sprintf("The %s field is required.", field))
		case "max":
			errs.add(field, fmt.Sprintf("The %s may not be greater than %s characters.", field, fe.Param()))
		case "min":
			errs.add(field, fmt.Sprintf("The %s must be at least %s.", field, fe.Param()))
		default:
			errs.add(field, fmt.Sprintf("The %s is invalid.", field))
		}
	}
}
