package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"kbr-silks-backend/internal/imaging"
	"kbr-silks-backend/internal/models"
)

const (
	multipartMemory = 32 << 20
	// MaxUploadBytes caps the raw file before compression.
	MaxUploadBytes = 25 << 20
)

var imageFieldNames = []string{"image", "file", "photo", "images"}

// sareeForm is the parsed admin saree form.
type sareeForm struct {
	input  models.SareeInput
	image  []byte
	fields map[string]string
}

func parseSareeForm(c *gin.Context) (*sareeForm, int, error) {
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil && err != http.ErrNotMultipart {
		return nil, http.StatusBadRequest, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	form := &sareeForm{fields: map[string]string{}}
	form.input = models.SareeInput{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Description: strings.TrimSpace(c.PostForm("description")),
		FabricType:  models.FabricType(strings.TrimSpace(c.PostForm("fabric_type"))),
		Color:       strings.TrimSpace(c.PostForm("color")),
	}
	form.input.Price = form.int64Field(c, "price", "Valid price required")
	form.input.Stock = form.int64Field(c, "stock", "Valid stock required")

	if url := strings.TrimSpace(c.PostForm("image_url")); url != "" {
		form.input.Image = &models.ImageRef{URL: url}
	}

	file := firstFile(c.Request.MultipartForm)
	if file == nil {
		return form, 0, nil
	}
	if file.Size > MaxUploadBytes {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file is %s, the limit is %s",
			imaging.FormatFileSize(int(file.Size)), imaging.FormatFileSize(MaxUploadBytes))
	}

	f, err := file.Open()
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	form.image, err = io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return form, 0, nil
}

func (f *sareeForm) int64Field(c *gin.Context, name, message string) int64 {
	raw := strings.TrimSpace(c.PostForm(name))
	if raw == "" {
		f.fields[name] = message
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f.fields[name] = message
		return 0
	}
	return v
}

func firstFile(form *multipart.Form) *multipart.FileHeader {
	if form == nil {
		return nil
	}
	for _, name := range imageFieldNames {
		if files := form.File[name]; len(files) > 0 {
			return files[0]
		}
	}
	return nil
}
