package catalog

import (
	"bytes"
	"errors"
	"testing"

	"github.com/hongminglow/valide/internal/models"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func sample() []models.Product {
	return []models.Product{
		{ID: "1", ProductName: "Saffiano Tote", Description: "Leather bag", Category: "Bags", Price: 2500},
		{ID: "2", ProductName: "Cleo", Description: "Shoulder bag", Category: "bags", Price: 1800},
		{ID: "3", ProductName: "Loafers", Description: "Brushed leather", Category: "Shoes", Price: 1800},
	}
}

func ids(products []models.Product) string {
	var out string
	for _, p := range products {
		out += p.ID
	}
	return out
}

func TestFilterByCategory(t *testing.T) {
	if got := ids(FilterByCategory(sample(), "BAGS")); got != "12" {
		t.Fatalf("bags = %s", got)
	}
	if got := ids(FilterByCategory(sample(), "all")); got != "123" {
		t.Fatalf("all = %s", got)
	}
}

func TestSearchMatchesNameAndDescription(t *testing.T) {
	if got := ids(Search(sample(), "leather")); got != "13" {
		t.Fatalf("leather = %s", got)
	}
	if got := ids(Search(sample(), "CLEO")); got != "2" {
		t.Fatalf("cleo = %s", got)
	}
	if got := ids(Search(sample(), " ")); got != "123" {
		t.Fatalf("blank = %s", got)
	}
}

func TestSortIsStable(t *testing.T) {
	tests := map[string]string{
		SortNewest:    "123",
		SortPriceAsc:  "231",
		SortPriceDesc: "123",
		"unknown":     "123",
	}
	for order, want := range tests {
		if got := ids(Sort(sample(), order)); got != want {
			t.Errorf("%s = %s, want %s", order, got, want)
		}
	}
}

func TestImageURL(t *testing.T) {
	tests := map[string]string{
		"":                  PlaceholderImage,
		"https://cdn/x.jpg": "https://cdn/x.jpg",
		"uploads/x.jpg":     "/uploads/x.jpg",
		"/uploads/x.jpg":    "/uploads/x.jpg",
	}
	for in, want := range tests {
		if got := ImageURL(in); got != want {
			t.Errorf("ImageURL(%q) = %q, want %q", in, got, want)
		}
	}
	if got := CoverImage(models.Product{}); got != PlaceholderImage {
		t.Errorf("cover of imageless product = %q", got)
	}
}

func TestFilterDesigners(t *testing.T) {
	if got := FilterDesigners("", AllDesignerCategories); len(got) != 5 {
		t.Fatalf("expected the full directory, got %d", len(got))
	}
	jewelry := FilterDesigners("", "Jewelry")
	if len(jewelry) != 2 {
		t.Fatalf("expected two jewelry houses, got %+v", jewelry)
	}
	if got := FilterDesigners("TOM", ""); len(got) != 1 || got[0].Name != "Tom Ford" {
		t.Fatalf("search = %+v", got)
	}
	if got := FilterDesigners("prada", "Jewelry"); len(got) != 0 {
		t.Fatalf("expected no match, got %+v", got)
	}
}

func TestValidateSubmission(t *testing.T) {
	valid := Submission{
		BrandName:   "Prada",
		ProductName: "Galleria",
		Price:       "3200",
		Category:    "Bags",
		Stock:       "4",
		Images:      []Image{{Filename: "a.png", Data: pngBytes}},
	}

	six := make([]Image, 6)
	for i := range six {
		six[i] = Image{Filename: "a.png", Data: pngBytes}
	}
	oversize := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, MaxImageBytes)...)

	tests := []struct {
		name   string
		mutate func(s *Submission)
		want   error
	}{
		{name: "valid", mutate: func(s *Submission) {}},
		{name: "blank brand", mutate: func(s *Submission) { s.BrandName = "  " }, want: ErrMissingFields},
		{name: "no stock", mutate: func(s *Submission) { s.Stock = "" }, want: ErrMissingFields},
		{name: "no images", mutate: func(s *Submission) { s.Images = nil }, want: ErrNoImages},
		{name: "six images", mutate: func(s *Submission) { s.Images = six }, want: ErrTooManyImages},
		{name: "text file", mutate: func(s *Submission) {
			s.Images = []Image{{Filename: "notes.png", Data: []byte("just some text")}}
		}, want: ErrRejectedImages},
		{name: "oversize", mutate: func(s *Submission) {
			s.Images = []Image{{Filename: "big.png", Data: oversize}}
		}, want: ErrRejectedImages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := ValidateSubmission(s)
			if tt.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}
