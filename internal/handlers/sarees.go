package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"kbr-silks-backend/internal/models"
	"kbr-silks-backend/internal/services"
)

type SareeCatalog interface {
	List(ctx context.Context) ([]models.Saree, error)
	Get(ctx context.Context, id int64) (*models.Saree, error)
	Browse(ctx context.Context, f services.CatalogFilter) ([]models.Saree, error)
	Featured(ctx context.Context) ([]models.Saree, error)
	Bridal(ctx context.Context) ([]models.Saree, error)
	Add(ctx context.Context, in models.SareeInput, image []byte) (*services.SavedSaree, error)
	Update(ctx context.Context, id int64, in models.SareeInput, image []byte) (*services.SavedSaree, error)
	Delete(ctx context.Context, id int64) error
}

type SareesHandler struct {
	sarees SareeCatalog
}

func NewSareesHandler(sarees SareeCatalog) *SareesHandler {
	return &SareesHandler{sarees: sarees}
}

// ListSarees godoc
// @Summary     Browse the catalog
// @Description Lists sarees, optionally searched by name/description/color, filtered by fabric and sorted by price
// @Tags        sarees
// @Produce     json
// @Param       q      query string false "Search text"
// @Param       fabric query string false "Kanjivaram, Banarasi or Mysore"
// @Param       sort   query string false "default, price-asc or price-desc"
// @Success     200 {object} models.SareeListResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /sarees [get]
func (h *SareesHandler) ListSarees(c *gin.Context) {
	filter := services.CatalogFilter{
		Query: c.Query("q"),
		Sort:  services.ParseSortOrder(c.Query("sort")),
	}
	if fabric := c.Query("fabric"); fabric != "" && fabric != "all" {
		filter.Fabric = models.FabricType(fabric)
		if !filter.Fabric.Valid() {
			badRequest(c, "invalid fabric", nil)
			return
		}
	}

	sarees, err := h.sarees.Browse(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SareeListResponse{Sarees: sarees})
}

// FeaturedSarees godoc
// @Summary     Featured sarees
// @Description The eight most premium sarees by price
// @Tags        sarees
// @Produce     json
// @Success     200 {object} models.SareeListResponse
// @Router      /sarees/featured [get]
func (h *SareesHandler) FeaturedSarees(c *gin.Context) {
	h.section(c, h.sarees.Featured)
}

// BridalSarees godoc
// @Summary     Bridal specials
// @Description Sarees whose name or description mentions a bridal keyword
// @Tags        sarees
// @Produce     json
// @Success     200 {object} models.SareeListResponse
// @Router      /sarees/bridal [get]
func (h *SareesHandler) BridalSarees(c *gin.Context) {
	h.section(c, h.sarees.Bridal)
}

func (h *SareesHandler) section(c *gin.Context, load func(context.Context) ([]models.Saree, error)) {
	sarees, err := load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SareeListResponse{Sarees: sarees})
}

// GetSaree godoc
// @Summary     Get a saree
// @Tags        sarees
// @Produce     json
// @Param       id path int true "Saree ID"
// @Success     200 {object} models.Saree
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /sarees/{id} [get]
func (h *SareesHandler) GetSaree(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	saree, err := h.sarees.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saree)
}

// CreateSaree godoc
// @Summary     Add a saree
// @Description Adds a saree with its image. Images over 1.4 MB are compressed before upload.
// @Tags        admin
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       name        formData string true  "Name"
// @Param       description formData string false "Description"
// @Param       fabric_type formData string true  "Kanjivaram, Banarasi or Mysore"
// @Param       color       formData string true  "Color"
// @Param       price       formData int    true  "Price in rupees"
// @Param       stock       formData int    true  "Units in stock"
// @Param       image       formData file   true  "Saree image"
// @Success     201 {object} models.SareeSaveResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     413 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/sarees [post]
func (h *SareesHandler) CreateSaree(c *gin.Context) {
	form, ok := h.readForm(c)
	if !ok {
		return
	}

	saved, err := h.sarees.Add(c.Request.Context(), form.input, form.image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.SareeSaveResponse{Saree: saved.Saree, Compression: saved.Image})
}

// UpdateSaree godoc
// @Summary     Update a saree
// @Description Updates a saree. The image is optional; without one the current image is kept.
// @Tags        admin
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       id          path     int    true  "Saree ID"
// @Param       name        formData string true  "Name"
// @Param       description formData string false "Description"
// @Param       fabric_type formData string true  "Kanjivaram, Banarasi or Mysore"
// @Param       color       formData string true  "Color"
// @Param       price       formData int    true  "Price in rupees"
// @Param       stock       formData int    true  "Units in stock"
// @Param       image       formData file   false "Replacement image"
// @Success     200 {object} models.SareeSaveResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     413 {object} models.ErrorResponse
// @Router      /admin/sarees/{id} [put]
func (h *SareesHandler) UpdateSaree(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	form, ok := h.readForm(c)
	if !ok {
		return
	}

	saved, err := h.sarees.Update(c.Request.Context(), id, form.input, form.image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SareeSaveResponse{Saree: saved.Saree, Compression: saved.Image})
}

// DeleteSaree godoc
// @Summary     Delete a saree
// @Tags        admin
// @Security    Bearer
// @Param       id path int true "Saree ID"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Router      /admin/sarees/{id} [delete]
func (h *SareesHandler) DeleteSaree(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.sarees.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SareesHandler) readForm(c *gin.Context) (*sareeForm, bool) {
	form, status, err := parseSareeForm(c)
	if err != nil {
		c.JSON(status, models.ErrorResponse{Error: "invalid upload", Message: err.Error()})
		return nil, false
	}
	if len(form.fields) > 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "validation failed", Fields: form.fields})
		return nil, false
	}
	return form, true
}
