package models

import "time"

type FabricType string

const (
	FabricKanjivaram FabricType = "Kanjivaram"
	FabricBanarasi   FabricType = "Banarasi"
	FabricMysore     FabricType = "Mysore"
)

var FabricTypes = []FabricType{FabricKanjivaram, FabricBanarasi, FabricMysore}

func (f FabricType) Valid() bool {
	for _, ft := range FabricTypes {
		if f == ft {
			return true
		}
	}
	return false
}

// ImageRef points at an externally hosted image. Path is empty for images
// referenced by URL only.
type ImageRef struct {
	Path string `json:"path,omitempty"`
	URL  string `json:"url"`
}

type Saree struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	FabricType  FabricType `json:"fabric_type"`
	Color       string     `json:"color"`
	Price       int64      `json:"price"`
	Stock       int64      `json:"stock"`
	Image       *ImageRef  `json:"image,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SareeInput carries the editable fields of a saree.
type SareeInput struct {
	Name        string
	Description string
	FabricType  FabricType
	Color       string
	Price       int64
	Stock       int64
	Image       *ImageRef
}
