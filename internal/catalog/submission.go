package catalog

import (
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/hongminglow/valide/internal/validation"
)

// Submission limits.
const (
	MaxImages     = 5
	MaxImageBytes = 5 << 20
)

// Submission rejection messages.
var (
	ErrMissingFields  = errors.New("Please fill in all required fields")
	ErrNoImages       = errors.New("Please upload at least one product image")
	ErrTooManyImages  = errors.New("Maximum 5 images allowed")
	ErrRejectedImages = errors.New("Some files were rejected. Please ensure all files are images under 5MB.")
)

// Image is one uploaded product image.
type Image struct {
	Filename string
	Data     []byte
}

// Submission is a new product as entered in the product form. Price and
// stock stay as entered; the catalog API parses them.
type Submission struct {
	BrandName      string
	ProductName    string
	Description    string
	Price          string
	Category       string
	Stock          string
	Specifications string
	Images         []Image
}

type requiredFields struct {
	BrandName   string `validate:"required"`
	ProductName string `validate:"required"`
	Price       string `validate:"required"`
	Category    string `validate:"required"`
	Stock       string `validate:"required"`
}

type sniffedImage struct {
	MIME string `validate:"supported_image"`
	Size int    `validate:"max=5242880"`
}

// ValidateSubmission returns the first rule s breaks, or nil.
func ValidateSubmission(s Submission) error {
	v := validation.Default()
	if err := v.Struct(requiredFields{
		BrandName:   strings.TrimSpace(s.BrandName),
		ProductName: strings.TrimSpace(s.ProductName),
		Price:       strings.TrimSpace(s.Price),
		Category:    strings.TrimSpace(s.Category),
		Stock:       strings.TrimSpace(s.Stock),
	}); err != nil {
		return ErrMissingFields
	}
	if len(s.Images) == 0 {
		return ErrNoImages
	}
	if len(s.Images) > MaxImages {
		return ErrTooManyImages
	}
	if len(AcceptImages(s.Images)) != len(s.Images) {
		return ErrRejectedImages
	}
	return nil
}

// AcceptImages keeps the images whose content sniffs as image/* and whose
// size is within MaxImageBytes.
func AcceptImages(images []Image) []Image {
	v := validation.Default()
	out := make([]Image, 0, len(images))
	for _, img := range images {
		sniffed := sniffedImage{MIME: mimetype.Detect(img.Data).String(), Size: len(img.Data)}
		if v.Struct(sniffed) == nil {
			out = append(out, img)
		}
	}
	return out
}
