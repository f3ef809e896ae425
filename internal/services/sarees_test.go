package services_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kbr-silks-backend/internal/errmsg"
	"kbr-silks-backend/internal/imaging"
	"kbr-silks-backend/internal/models"
	"kbr-silks-backend/internal/services"
	"kbr-silks-backend/internal/supabase"
)

func newSareeService(db *fakeDB, images *fakeImages, opts ...services.Option) *services.SareeService {
	opts = append([]services.Option{noWait()}, opts...)
	return services.NewSareeService(db, services.NewStorageService(images, opts...), opts...)
}

func sareeInput() models.SareeInput {
	return models.SareeInput{
		Name: "Temple Border", Description: "Bridal red silk", FabricType: models.FabricKanjivaram,
		Color: "Red", Price: 15000, Stock: 3,
	}
}

func TestSareeService_AddUploadsThenCreates(t *testing.T) {
	var journal []string
	db := newFakeDB(&journal)
	images := &fakeImages{journal: &journal}
	svc := newSareeService(db, images)

	saved, err := svc.Add(context.Background(), sareeInput(), smallPNG(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"UploadImage", "CreateSaree"}, journal)
	require.NotNil(t, saved.Saree.Image)
	assert.Equal(t, "https://cdn.example/"+saved.Saree.Image.Path, saved.Saree.Image.URL)
	require.NotNil(t, saved.Image)
	assert.False(t, saved.Image.WasCompressed)
	assert.Equal(t, "image/png", images.uploads[0].contentType)
}

func TestSareeService_AddCompressesLargeImageBeforeCreate(t *testing.T) {
	var journal []string
	db := newFakeDB(&journal)
	images := &fakeImages{journal: &journal}
	budget := 300 * 1024
	svc := newSareeService(db, images, services.WithImaging(
		imaging.WithBudget(budget), imaging.WithMaxDimensions(400, 400)))

	original := noisyPNG(t, 800, 800)
	require.Greater(t, len(original), budget)

	saved, err := svc.Add(context.Background(), sareeInput(), original)
	require.NoError(t, err)

	require.Len(t, images.uploads, 1)
	assert.LessOrEqual(t, images.uploads[0].size, budget)
	assert.Equal(t, "image/jpeg", images.uploads[0].contentType)
	assert.True(t, saved.Image.WasCompressed)
	assert.Equal(t, []string{"UploadImage", "CreateSaree"}, journal)
}

func TestSareeService_AddValidatesBeforeBackend(t *testing.T) {
	db := newFakeDB(nil)
	images := &fakeImages{}
	svc := newSareeService(db, images)

	in := sareeInput()
	in.Name = "  "
	in.Price = 0
	_, err := svc.Add(context.Background(), in, nil)

	var ve *services.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "name")
	assert.Contains(t, ve.Fields, "price")
	assert.Contains(t, ve.Fields, "image")
	assert.Zero(t, images.attempts)
	assert.Empty(t, db.calls)
}

func TestSareeService_AddRejectsNonImage(t *testing.T) {
	db := newFakeDB(nil)
	images := &fakeImages{}
	svc := newSareeService(db, images)

	_, err := svc.Add(context.Background(), sareeInput(), []byte("just some text, not a picture"))

	var ve *services.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "image")
	assert.Zero(t, images.attempts)
}

func TestSareeService_UnauthorizedUploadNotRetried(t *testing.T) {
	db := newFakeDB(nil)
	images := &fakeImages{failures: []error{errUnauthorized, errUnauthorized, errUnauthorized}}
	svc := newSareeService(db, images)

	_, err := svc.Add(context.Background(), sareeInput(), smallPNG(t))

	var se *services.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errmsg.CategoryNotAuthorized, se.Category)
	assert.Equal(t, errmsg.Messages[errmsg.CategoryNotAuthorized], se.Message)
	assert.Equal(t, 1, images.attempts)
	assert.Zero(t, db.calls["CreateSaree"])
}

func TestSareeService_UploadRetriesNetworkFailures(t *testing.T) {
	db := newFakeDB(nil)
	images := &fakeImages{failures: []error{errors.New("connection reset by peer")}}
	svc := newSareeService(db, images)

	saved, err := svc.Add(context.Background(), sareeInput(), smallPNG(t))
	require.NoError(t, err)
	assert.Equal(t, 2, images.attempts)
	assert.NotNil(t, saved.Saree.Image)
}

func TestSareeService_CreateFailureRemovesImage(t *testing.T) {
	db := newFakeDB(nil)
	db.fail("CreateSaree", errors.New(`a saree named "Temple Border" already exists`))
	images := &fakeImages{}
	svc := newSareeService(db, images)

	_, err := svc.Add(context.Background(), sareeInput(), smallPNG(t))

	var se *services.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errmsg.CategoryDuplicate, se.Category)
	assert.Equal(t, 1, db.calls["CreateSaree"])
	require.Len(t, images.deleted, 1)
	assert.Equal(t, images.uploads[0].path, images.deleted[0])
}

func TestSareeService_DuplicateNameIsNotMistakenForSize(t *testing.T) {
	db := newFakeDB(nil)
	db.fail("CreateSaree", fmt.Errorf("a saree named %q %w", "Free Size Pattu", supabase.ErrAlreadyExists))
	svc := newSareeService(db, &fakeImages{})

	in := sareeInput()
	in.Name = "Free Size Pattu"
	_, err := svc.Add(context.Background(), in, smallPNG(t))

	var se *services.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errmsg.CategoryDuplicate, se.Category)
	assert.Equal(t, errmsg.Messages[errmsg.CategoryDuplicate], se.Message)
	assert.Equal(t, http.StatusConflict, services.StatusCode(err))
	assert.Equal(t, 1, db.calls["CreateSaree"])
}

func TestSareeService_UpdateKeepsImageWhenNoneGiven(t *testing.T) {
	db := newFakeDB(nil)
	existing := db.seed(models.Saree{
		Name: "Temple Border", FabricType: models.FabricKanjivaram, Color: "Red", Price: 100, Stock: 1,
		Image: &models.ImageRef{Path: "sarees/old.jpg", URL: "https://cdn.example/sarees/old.jpg"},
	})
	images := &fakeImages{}
	svc := newSareeService(db, images)

	in := sareeInput()
	in.Price = 200
	saved, err := svc.Update(context.Background(), existing.ID, in, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(200), saved.Saree.Price)
	require.NotNil(t, saved.Saree.Image)
	assert.Equal(t, "sarees/old.jpg", saved.Saree.Image.Path)
	assert.Nil(t, saved.Image)
	assert.Empty(t, images.deleted)
}

func TestSareeService_UpdateReplacesImage(t *testing.T) {
	db := newFakeDB(nil)
	existing := db.seed(models.Saree{
		Name: "Temple Border", FabricType: models.FabricKanjivaram, Color: "Red", Price: 100, Stock: 1,
		Image: &models.ImageRef{Path: "sarees/old.jpg", URL: "https://cdn.example/sarees/old.jpg"},
	})
	images := &fakeImages{}
	svc := newSareeService(db, images)

	saved, err := svc.Update(context.Background(), existing.ID, sareeInput(), smallPNG(t))
	require.NoError(t, err)

	assert.NotEqual(t, "sarees/old.jpg", saved.Saree.Image.Path)
	assert.Equal(t, []string{"sarees/old.jpg"}, images.deleted)
}

func TestSareeService_UpdateMissingSaree(t *testing.T) {
	svc := newSareeService(newFakeDB(nil), &fakeImages{})

	_, err := svc.Update(context.Background(), 99, sareeInput(), nil)

	var se *services.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errmsg.CategoryNotFound, se.Category)
}

func TestSareeService_DeleteRemovesImageAndInvalidates(t *testing.T) {
	db := newFakeDB(nil)
	s := db.seed(models.Saree{
		Name: "Temple Border", FabricType: models.FabricKanjivaram, Color: "Red", Price: 100,
		Image: &models.ImageRef{Path: "sarees/a.jpg", URL: "u"},
	})
	images := &fakeImages{}
	svc := newSareeService(db, images)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(context.Background(), s.ID))
	assert.Equal(t, []string{"sarees/a.jpg"}, images.deleted)

	list, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 2, db.calls["ListSarees"])
}

func TestSareeService_ListIsCached(t *testing.T) {
	db := newFakeDB(nil)
	db.seed(models.Saree{Name: "A", Price: 1})
	svc := newSareeService(db, &fakeImages{})

	for i := 0; i < 3; i++ {
		_, err := svc.List(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, db.calls["ListSarees"])
}

func TestSareeService_ListRetriesThenTranslates(t *testing.T) {
	db := newFakeDB(nil)
	db.fail("ListSarees", errors.New("request timeout"), errors.New("request timeout"), errors.New("request timeout"))
	svc := newSareeService(db, &fakeImages{})

	_, err := svc.List(context.Background())

	var se *services.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errmsg.CategoryTimedOut, se.Category)
	assert.Equal(t, 3, db.calls["ListSarees"])
}

func TestSareeService_BrowseFeaturedBridal(t *testing.T) {
	db := newFakeDB(nil)
	db.seed(models.Saree{Name: "Wedding Kanjivaram", FabricType: models.FabricKanjivaram, Color: "Maroon", Price: 50000})
	db.seed(models.Saree{Name: "Daily Mysore", FabricType: models.FabricMysore, Color: "Green", Price: 4000})
	db.seed(models.Saree{Name: "Banarasi Gold", Description: "for the bride", FabricType: models.FabricBanarasi, Color: "Gold", Price: 30000})
	svc := newSareeService(db, &fakeImages{})
	ctx := context.Background()

	asc, err := svc.Browse(ctx, services.CatalogFilter{Sort: services.SortPriceAsc})
	require.NoError(t, err)
	assert.Equal(t, "Daily Mysore", asc[0].Name)

	green, err := svc.Browse(ctx, services.CatalogFilter{Query: "GREEN"})
	require.NoError(t, err)
	require.Len(t, green, 1)

	featured, err := svc.Featured(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Wedding Kanjivaram", featured[0].Name)

	bridal, err := svc.Bridal(ctx)
	require.NoError(t, err)
	assert.Len(t, bridal, 2)

	// Browsing must not reorder the cached list.
	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Wedding Kanjivaram", all[0].Name)
}
