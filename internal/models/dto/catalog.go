package dto

import "github.com/hongminglow/valide/internal/models"

// ProductsResponse covers both shapes the catalog API uses for product lists:
// new arrivals under "products" and brand listings under "data".
type ProductsResponse struct {
	Success  bool             `json:"success"`
	Products []models.Product `json:"products"`
	Data     []models.Product `json:"data"`
}

// AddToCartRequest is the body of POST /cart/add.
type AddToCartRequest struct {
	ProductID string `json:"productId"`
}

// SubmitProductResponse is the body returned by POST /productForm.
type SubmitProductResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Data    models.Product `json:"data"`
}
