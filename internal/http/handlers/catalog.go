package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hongminglow/valide/internal/catalog"
	"github.com/hongminglow/valide/internal/http/respond"
	"github.com/hongminglow/valide/internal/models"
	"github.com/hongminglow/valide/internal/models/dto"
)

// maxUploadBytes bounds a product submission: five images plus form fields.
const maxUploadBytes = catalog.MaxImages*catalog.MaxImageBytes + 1<<20

// Catalog is the part of the catalog client the gateway proxies.
type Catalog interface {
	NewArrivals(ctx context.Context, category string) ([]models.Product, error)
	BrandProducts(ctx context.Context, brand string) ([]models.Product, error)
	AddToCart(ctx context.Context, token, productID string) error
	SubmitProduct(ctx context.Context, s catalog.Submission) (models.Product, error)
}

// CatalogHandler serves product listings, the designer directory, the cart
// and product submission.
type CatalogHandler struct {
	catalog  Catalog
	sessions *Sessions
	logger   *zap.Logger
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(c Catalog, sessions *Sessions, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: c, sessions: sessions, logger: logger.Named("catalog")}
}

// Register attaches catalog routes to the router.
func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/products/new-arrivals", h.handleNewArrivals)
	r.Get("/brands/{brand}/products", h.handleBrandProducts)
	r.Get("/designers", h.handleDesigners)
	r.Post("/cart", h.handleAddToCart)
	r.Post("/products", h.handleSubmitProduct)
}

func (h *CatalogHandler) handleNewArrivals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.catalog.NewArrivals(r.Context(), q.Get("category"))
	if err != nil {
		h.upstreamError(w, err, "Failed to fetch products")
		return
	}
	products = catalog.Sort(catalog.Search(products, q.Get("q")), q.Get("sort"))
	respond.JSON(w, http.StatusOK, "ok", present(products))
}

func (h *CatalogHandler) handleBrandProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.catalog.BrandProducts(r.Context(), chi.URLParam(r, "brand"))
	if err != nil {
		h.upstreamError(w, err, "Failed to load products")
		return
	}
	products = catalog.Sort(catalog.Search(products, q.Get("q")), q.Get("sort"))
	respond.JSON(w, http.StatusOK, "ok", present(products))
}

func (h *CatalogHandler) handleDesigners(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	respond.JSON(w, http.StatusOK, "ok", catalog.FilterDesigners(q.Get("q"), q.Get("category")))
}

func (h *CatalogHandler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req dto.AddToCartRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		respond.Error(w, http.StatusBadRequest, "productId is required")
		return
	}

	provider, err := h.sessions.For(r)
	if err != nil {
		h.logger.Error("open session", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "session unavailable")
		return
	}
	token := provider.Token()
	if token == "" {
		respond.Error(w, http.StatusUnauthorized, "Please log in to add items to your cart")
		return
	}

	if err := h.catalog.AddToCart(r.Context(), token, req.ProductID); err != nil {
		h.upstreamError(w, err, "Failed to add to cart")
		return
	}
	respond.JSON(w, http.StatusOK, "added to cart", req)
}

func (h *CatalogHandler) handleSubmitProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	images, err := readImages(r.MultipartForm.File["images"])
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	s := catalog.Submission{
		BrandName:      r.FormValue("brandName"),
		ProductName:    r.FormValue("productName"),
		Description:    r.FormValue("description"),
		Price:          r.FormValue("price"),
		Category:       r.FormValue("category"),
		Stock:          r.FormValue("stock"),
		Specifications: r.FormValue("specification"),
		Images:         images,
	}
	if err := catalog.ValidateSubmission(s); err != nil {
		respond.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	product, err := h.catalog.SubmitProduct(r.Context(), s)
	if err != nil {
		h.upstreamError(w, err, "Failed to submit product")
		return
	}
	respond.JSON(w, http.StatusCreated, "Product added successfully!", product)
}

func (h *CatalogHandler) upstreamError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, catalog.ErrNoToken) {
		respond.Error(w, http.StatusUnauthorized, err.Error())
		return
	}
	h.logger.Warn("catalog call failed", zap.Error(err))
	respond.Error(w, upstreamStatus(err), upstreamMessage(err, fallback))
}

func readImages(headers []*multipart.FileHeader) ([]catalog.Image, error) {
	images := make([]catalog.Image, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, errors.New("could not read uploaded image")
		}
		data, err := io.ReadAll(io.LimitReader(f, catalog.MaxImageBytes+1))
		f.Close()
		if err != nil {
			return nil, errors.New("could not read uploaded image")
		}
		images = append(images, catalog.Image{Filename: fh.Filename, Data: data})
	}
	return images, nil
}

// present rewrites image references into URLs the browser can load.
func present(products []models.Product) []models.Product {
	out := make([]models.Product, len(products))
	for i, p := range products {
		if len(p.Images) == 0 {
			p.Images = []string{catalog.PlaceholderImage}
		} else {
			imgs := make([]string, len(p.Images))
			for j, ref := range p.Images {
				imgs[j] = catalog.ImageURL(ref)
			}
			p.Images = imgs
		}
		out[i] = p
	}
	return out
}
