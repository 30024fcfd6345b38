package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"catalog/internal/catalog"
)

const flashKey = "success"

// Config wires the handlers to the catalog.
type Config struct {
	Service        *catalog.Service
	Log            logrus.FieldLogger
	MaxUploadBytes int64
	RequestTimeout time.Duration
}

type handler struct {
	*Config
}

// Register mounts the product routes on r. Sessions middleware must already
// be installed on r.
func Register(r gin.IRouter, cfg *Config) {
	h := &handler{Config: cfg}

	r.GET("/products", h.index)
	r.GET("/products/:id", h.show)
	r.POST("/products", h.store)
	r.POST("/products/:id", h.update)
	r.PUT("/products/:id", h.update)
	r.POST("/products/:id/delete", h.destroy)
	r.DELETE("/products/:id", h.destroy)
}

func (h *handler) index(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	page, _ := strconv.Atoi(c.Query("page"))
	result, err := h.Service.ListProducts(ctx, catalog.Filter{
		Search: c.Query("search"),
		Page:   page,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": result,
		"filters":  gin.H{"search": result.Search},
		"flash":    takeFlash(c),
	})
}

func (h *handler) show(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	p, err := h.Service.GetProduct(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

func (h *handler) store(c *gin.Context) {
	in, image, ok := h.bindProduct(c)
	if !ok {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if _, err := h.Service.CreateProduct(ctx, in, image); err != nil {
		h.fail(c, err)
		return
	}
	redirectWithFlash(c, "Product created successfully.")
}

func (h *handler) update(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	in, image, ok := h.bindProduct(c)
	if !ok {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if _, err := h.Service.UpdateProduct(ctx, id, in, image); err != nil {
		h.fail(c, err)
		return
	}
	redirectWithFlash(c, "Product updated successfully.")
}

func (h *handler) destroy(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Service.DeleteProduct(ctx, id); err != nil {
		h.fail(c, err)
		return
	}
	redirectWithFlash(c, "Product deleted successfully.")
}

func (h *handler) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.RequestTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.RequestTimeout)
}

func productID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
		return 0, false
	}
	return uint(id), true
}

func redirectWithFlash(c *gin.Context, msg string) {
	sess := sessions.Default(c)
	sess.AddFlash(msg, flashKey)
	_ = sess.Save()
	c.Redirect(http.StatusSeeOther, "/products")
}

func takeFlash(c *gin.Context) []string {
	sess := sessions.Default(c)
	raw := sess.Flashes(flashKey)
	if len(raw) == 0 {
		return []string{}
	}
	_ = sess.Save()

	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
