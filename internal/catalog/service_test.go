package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog/internal/assets"
	"catalog/internal/catalog"
	"catalog/internal/store"
)

func tickingClock() func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func setup(t *testing.T) (*catalog.Service, *flakyRepo, *recordingAssets) {
	t.Helper()
	repo := &flakyRepo{MemoryProducts: store.NewMemoryProducts(tickingClock())}
	a := newRecordingAssets()
	log := quietLogger()
	svc := catalog.NewService(repo, catalog.NewImageManager(a, log), log)
	return svc, repo, a
}

func input(name, sku string) catalog.Input {
	return catalog.Input{Name: name, SKU: sku, Price: decimal.RequireFromString("12.50"), Stock: 5}
}

func TestScenarioA_CreateWithoutFile(t *testing.T) {
	svc, _, a := setup(t)

	p, err := svc.CreateProduct(context.Background(), input("Mug", "MUG-1"), catalog.None[assets.Upload]())
	require.NoError(t, err)

	assert.NotZero(t, p.ID)
	assert.Empty(t, p.Image)
	assert.Nil(t, p.ImageURL)
	assert.Zero(t, a.stores)

	got, err := svc.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ImageURL)
}

func TestScenarioB_CreateWithFile(t *testing.T) {
	svc, _, a := setup(t)

	p, err := svc.CreateProduct(context.Background(), input("Mug", "MUG-1"), png("mug.png"))
	require.NoError(t, err)

	require.NotEmpty(t, p.Image)
	_, ok := a.Get(p.Image)
	assert.True(t, ok)
	require.NotNil(t, p.ImageURL)
	assert.Contains(t, *p.ImageURL, p.Image)

	page, err := svc.ListProducts(context.Background(), catalog.Filter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].ImageURL)
	assert.Contains(t, *page.Items[0].ImageURL, p.Image)
}

func TestScenarioC_UpdateReplacesImage(t *testing.T) {
	svc, repo, a := setup(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, input("Mug", "MUG-1"), catalog.None[assets.Upload]())
	require.NoError(t, err)
	require.NoError(t, a.Put("products/old.png", []byte("old")))
	p.Image = "products/old.png"
	require.NoError(t, repo.MemoryProducts.Update(ctx, p))

	updated, err := svc.UpdateProduct(ctx, p.ID, input("Mug v2", "MUG-1"), png("g.png"))
	require.NoError(t, err)

	_, ok := a.Get("products/old.png")
	assert.False(t, ok)
	assert.Equal(t, []string{"products/old.png"}, a.deletes)
	assert.NotEqual(t, "products/old.png", updated.Image)
	_, ok = a.Get(updated.Image)
	assert.True(t, ok)

	stored, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Image, stored.Image)
	assert.Equal(t, "Mug v2", stored.Name)
}

func TestScenarioC_OldImageAlreadyMissing(t *testing.T) {
	svc, repo, a := setup(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, input("Mug", "MUG-1"), catalog.None[assets.Upload]())
	require.NoError(t, err)
	p.Image = "products/old.png"
	require.NoError(t, repo.MemoryProducts.Update(ctx, p))

	updated, err := svc.UpdateProduct(ctx, p.ID, input("Mug", "MUG-1"), png("g.png"))
	require.NoError(t, err)
	assert.NotEqual(t, "products/old.png", updated.Image)
	assert.Empty(t, a.deletes)
}

func TestScenarioD_UpdateWithoutFileKeepsImage(t *testing.T) {
	svc, repo, a := setup(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, input("Mug", "MUG-1"), catalog.None[assets.Upload]())
	require.NoError(t, err)
	require.NoError(t, a.Put("products/old.png", []byte("old")))
	p.Image = "products/old.png"
	require.NoError(t, repo.MemoryProducts.Update(ctx, p))

	updated, err := svc.UpdateProduct(ctx, p.ID, input("Renamed", "MUG-2"), catalog.None[assets.Upload]())
	require.NoError(t, err)

	assert.Equal(t, "products/old.png", updated.Image)
	assert.Empty(t, a.deletes)
	assert.Empty(t, a.exists)
	_, ok := a.Get("products/old.png")
	assert.True(t, ok)

	stored, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "products/old.png", stored.Image)
	assert.Equal(t, "Renamed", stored.Name)
}

func TestScenarioE_SoftDeleteKeepsImage(t *testing.T) {
	svc, _, a := setup(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, input("Mug", "MUG-1"), png("mug.png"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))

	page, err := svc.ListProducts(ctx, catalog.Filter{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Total)

	page, err = svc.ListProducts(ctx, catalog.Filter{Search: "mug"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, ok := a.Get(p.Image)
	assert.True(t, ok, "image file must survive soft delete")
	assert.Empty(t, a.deletes)
	url := svc.Images().ResolveURL(p.Image)
	require.NotNil(t, url)
	assert.Contains(t, *url, p.Image)

	_, err = svc.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestCreate_AssetFailureSkipsRecord(t *testing.T) {
	svc, repo, a := setup(t)
	a.storeErr = errors.New("disk full")

	_, err := svc.CreateProduct(context.Background(), input("Mug", "MUG-1"), png("mug.png"))

	var assetErr *catalog.AssetStoreError
	require.ErrorAs(t, err, &assetErr)
	assert.Zero(t, repo.creates)
}

func TestCreate_RecordFailureLeavesOrphan(t *testing.T) {
	svc, repo, a := setup(t)
	repo.createErr = errors.New("connection reset")

	_, err := svc.CreateProduct(context.Background(), input("Mug", "MUG-1"), png("mug.png"))

	var recErr *catalog.RecordStoreError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, "create", recErr.Op)
	// not cleaned up
	assert.Equal(t, 1, a.Len())
}

func TestCreate_Validation(t *testing.T) {
	svc, repo, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		field string
		in    catalog.Input
	}{
		{"name", catalog.Input{Name: "   ", Price: decimal.Zero}},
		{"price", catalog.Input{Name: "x", Price: decimal.NewFromInt(-1)}},
		{"stock", catalog.Input{Name: "x", Price: decimal.Zero, Stock: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tt.in, png("x.png"))
			var vErr *catalog.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
	assert.Zero(t, repo.creates)
}

func TestCreate_TrimsFields(t *testing.T) {
	svc, _, _ := setup(t)

	p, err := svc.CreateProduct(context.Background(), input("  Mug  ", " MUG-1 "), catalog.None[assets.Upload]())
	require.NoError(t, err)
	assert.Equal(t, "Mug", p.Name)
	assert.Equal(t, "MUG-1", p.SKU)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, a := setup(t)

	_, err := svc.UpdateProduct(context.Background(), 404, input("x", "y"), png("x.png"))
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	var nf *catalog.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, uint(404), nf.ID)
	assert.Zero(t, a.stores)
}

func TestUpdate_SoftDeletedIsNotFound(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, input("Mug", "MUG-1"), catalog.None[assets.Upload]())
	require.NoError(t, err)
	require.NoError(t, svc.DeleteProduct(ctx, p.ID))

	_, err = svc.UpdateProduct(ctx, p.ID, input("Mug", "MUG-1"), catalog.None[assets.Upload]())
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	err = svc.DeleteProduct(ctx, p.ID)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestUpdate_RecordFailure(t *testing.T) {
	svc, repo, _ := setup(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, input("Mug", "MUG-1"), catalog.None[assets.Upload]())
	require.NoError(t, err)
	repo.updateErr = errors.New("deadlock")

	_, err = svc.UpdateProduct(ctx, p.ID, input("Mug", "MUG-1"), png("g.png"))
	var recErr *catalog.RecordStoreError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, "update", recErr.Op)
}

func TestListProducts_SearchMatchesNameOrSKU(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	for _, in := range []catalog.Input{
		input("Blue Coffee Mug", "KIT-001"),
		input("Teapot", "MUG-ALT"),
		input("Spoon", "KIT-002"),
	} {
		_, err := svc.CreateProduct(ctx, in, catalog.None[assets.Upload]())
		require.NoError(t, err)
	}

	page, err := svc.ListProducts(ctx, catalog.Filter{Search: "mUg"})
	require.NoError(t, err)

	var names []string
	for _, p := range page.Items {
		names = append(names, p.Name)
		match := strings.Contains(strings.ToLower(p.Name), "mug") || strings.Contains(strings.ToLower(p.SKU), "mug")
		assert.True(t, match, p.Name)
	}
	assert.Equal(t, []string{"Teapot", "Blue Coffee Mug"}, names)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, "mUg", page.Search)
}

func TestListProducts_Paging(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	for i := 0; i < 23; i++ {
		_, err := svc.CreateProduct(ctx, input(fmt.Sprintf("p%02d", i), ""), catalog.None[assets.Upload]())
		require.NoError(t, err)
	}

	seen := map[uint]bool{}
	for pageNo := 1; pageNo <= 3; pageNo++ {
		page, err := svc.ListProducts(ctx, catalog.Filter{Page: pageNo})
		require.NoError(t, err)
		assert.Equal(t, pageNo, page.Page)
		assert.Equal(t, catalog.PageSize, page.PerPage)
		assert.Equal(t, 3, page.LastPage)
		assert.Equal(t, int64(23), page.Total)
		for _, p := range page.Items {
			assert.False(t, seen[p.ID], "duplicate %d", p.ID)
			seen[p.ID] = true
		}
	}
	assert.Len(t, seen, 23)

	page, err := svc.ListProducts(ctx, catalog.Filter{Page: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, "p22", page.Items[0].Name)

	page, err = svc.ListProducts(ctx, catalog.Filter{Page: 99})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(23), page.Total)
}

func TestListProducts_HugePageIsPastTheEnd(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateProduct(ctx, input(fmt.Sprintf("p%02d", i), ""), catalog.None[assets.Upload]())
		require.NoError(t, err)
	}

	for _, pg := range []int{math.MaxInt, math.MaxInt/catalog.PageSize + 2} {
		var page *catalog.Page
		require.NotPanics(t, func() {
			var err error
			page, err = svc.ListProducts(ctx, catalog.Filter{Page: pg})
			require.NoError(t, err)
		})
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, pg, page.Page)
		assert.Equal(t, 1, page.LastPage)
	}
}

func TestListProducts_EmptyCatalog(t *testing.T) {
	svc, _, _ := setup(t)

	page, err := svc.ListProducts(context.Background(), catalog.Filter{Search: "   "})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.LastPage)
	assert.Equal(t, "", page.Search)
}

func TestListProducts_RecordFailure(t *testing.T) {
	svc, repo, _ := setup(t)
	repo.queryErr = errors.New("timeout")

	_, err := svc.ListProducts(context.Background(), catalog.Filter{})
	var recErr *catalog.RecordStoreError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, "query", recErr.Op)
}
