package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nfnt/resize"
)

const (
	// DefaultBudget is 1.4 MiB, under the storage message ceiling.
	DefaultBudget    = 14 * 1024 * 1024 / 10
	DefaultMaxWidth  = 1200
	DefaultMaxHeight = 1200
	DefaultShrink    = 0.4

	OutputContentType = "image/jpeg"
)

// DefaultQualities is the descending JPEG quality ladder.
var DefaultQualities = []int{85, 75, 65, 55, 45, 35}

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrUnreadable        = errors.New("image file could not be read")
	ErrRasterUnavailable = errors.New("image raster could not be created")
	ErrBudgetExceeded    = errors.New("image exceeds the upload size limit")
)

var decodable = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// IsDecodable reports whether the detected type is one Compress can re-encode.
func IsDecodable(mime *mimetype.MIME) bool {
	for contentType := range decodable {
		if mime.Is(contentType) {
			return true
		}
	}
	return false
}

// BudgetError reports the smallest size reached when compression gave up.
type BudgetError struct {
	Size  int
	Limit int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("image is still %s after compression, which exceeds the %s limit",
		FormatFileSize(e.Size), FormatFileSize(e.Limit))
}

func (e *BudgetError) Unwrap() error {
	return ErrBudgetExceeded
}

type Result struct {
	Data           []byte
	ContentType    string
	OriginalSize   int
	CompressedSize int
	Width          int
	Height         int
	Quality        int
	WasCompressed  bool
}

func (r *Result) OriginalKB() int {
	return int(math.Round(float64(r.OriginalSize) / 1024))
}

func (r *Result) CompressedKB() int {
	return int(math.Round(float64(r.CompressedSize) / 1024))
}

type options struct {
	budget    int
	maxWidth  int
	maxHeight int
	qualities []int
	shrink    float64
}

type Option func(*options)

func WithBudget(bytes int) Option {
	return func(o *options) {
		if bytes > 0 {
			o.budget = bytes
		}
	}
}

func WithMaxDimensions(width, height int) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.maxWidth, o.maxHeight = width, height
		}
	}
}

func WithQualities(qualities ...int) Option {
	return func(o *options) {
		if len(qualities) > 0 {
			o.qualities = qualities
		}
	}
}

// WithShrink sets the fraction removed from each dimension in the last-resort pass.
func WithShrink(fraction float64) Option {
	return func(o *options) {
		if fraction > 0 && fraction < 1 {
			o.shrink = fraction
		}
	}
}

// Compress shrinks an uploaded image until it fits the byte budget.
// Inputs already within budget are returned untouched.
func Compress(data []byte, opts ...Option) (*Result, error) {
	o := options{
		budget:    DefaultBudget,
		maxWidth:  DefaultMaxWidth,
		maxHeight: DefaultMaxHeight,
		qualities: DefaultQualities,
		shrink:    DefaultShrink,
	}
	for _, opt := range opts {
		opt(&o)
	}

	mime := mimetype.Detect(data)
	originalSize := len(data)

	if originalSize <= o.budget {
		result := &Result{
			Data:           data,
			ContentType:    mime.String(),
			OriginalSize:   originalSize,
			CompressedSize: originalSize,
		}
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			result.Width, result.Height = cfg.Width, cfg.Height
		}
		return result, nil
	}

	if !IsDecodable(mime) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime.String())
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, ErrRasterUnavailable
	}

	width, height := FitWithin(bounds.Dx(), bounds.Dy(), o.maxWidth, o.maxHeight)
	raster, err := render(src, width, height)
	if err != nil {
		return nil, err
	}

	for _, quality := range o.qualities {
		encoded, err := encode(raster, quality)
		if err != nil {
			return nil, err
		}
		if len(encoded) <= o.budget {
			return compressed(encoded, originalSize, width, height, quality), nil
		}
	}

	// Last resort: smaller raster at the lowest quality.
	lowest := o.qualities[len(o.qualities)-1]
	width = max(1, int(math.Round(float64(width)*(1-o.shrink))))
	height = max(1, int(math.Round(float64(height)*(1-o.shrink))))
	raster, err = render(raster, width, height)
	if err != nil {
		return nil, err
	}

	encoded, err := encode(raster, lowest)
	if err != nil {
		return nil, err
	}
	if len(encoded) > o.budget {
		return nil, &BudgetError{Size: len(encoded), Limit: o.budget}
	}

	return compressed(encoded, originalSize, width, height, lowest), nil
}

// FitWithin scales width and height down, keeping the aspect ratio, so that
// neither exceeds its cap. It never scales up.
func FitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}
	ratio := math.Min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))
	w := max(1, int(math.Round(float64(width)*ratio)))
	h := max(1, int(math.Round(float64(height)*ratio)))
	return w, h
}

// render draws src scaled to width x height onto an opaque white RGBA surface.
func render(src image.Image, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrRasterUnavailable
	}

	scaled := src
	if b := src.Bounds(); b.Dx() != width || b.Dy() != height {
		scaled = resize.Resize(uint(width), uint(height), src, resize.Lanczos3)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), scaled, scaled.Bounds().Min, draw.Over)
	return dst, nil
}

func encode(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func compressed(data []byte, originalSize, width, height, quality int) *Result {
	return &Result{
		Data:           data,
		ContentType:    OutputContentType,
		OriginalSize:   originalSize,
		CompressedSize: len(data),
		Width:          width,
		Height:         height,
		Quality:        quality,
		WasCompressed:  true,
	}
}

// FormatFileSize formats a byte count for display.
func FormatFileSize(n int) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	}
}
