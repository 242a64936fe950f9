package models

import "time"

// Product is a catalog item as returned by the catalog API.
type Product struct {
	ID            string    `json:"_id"`
	BrandName     string    `json:"brandName"`
	ProductName   string    `json:"productName"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	Category      string    `json:"category"`
	Gender        string    `json:"gender,omitempty"`
	Stock         int       `json:"stock"`
	Specification string    `json:"specification,omitempty"`
	Images        []string  `json:"images"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Designer is an entry in the designer directory.
type Designer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Image    string `json:"image"`
	Featured bool   `json:"featured"`
}
