package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zenbuy/backend/internal/product"
)

type productResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	ImageURL      string    `json:"imageUrl"`
	Category      string    `json:"category"`
	StockQuantity int       `json:"stockQuantity"`
}

// ProductHandler serves the read-only catalog endpoints. Catalog writes happen
// through seeding, not the API.
type ProductHandler struct {
	products product.Repository
}

func NewProductHandler(repo product.Repository) *ProductHandler {
	return &ProductHandler{products: repo}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleList)
	router.Get("/products/{productId}", h.handleGetProduct)
}

func (h *ProductHandler) handleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products")
		respondWithError(w, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}

	resp := make([]productResponse, len(products))
	for i := range products {
		resp[i] = toProductResponse(&products[i])
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *ProductHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.FromString(chi.URLParam(r, "productId"))
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	p, err := h.products.GetByID(r.Context(), productID)
	if err != nil {
		var notFoundErr *product.NotFoundError
		if errors.As(err, &notFoundErr) {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Error().Err(err).Stringer("product_id", productID).Msg("Failed to get product")
		respondWithError(w, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}

	respondWithJSON(w, http.StatusOK, toProductResponse(p))
}

func toProductResponse(p *product.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price.InexactFloat64(),
		ImageURL:      p.ImageURL,
		Category:      p.Category,
		StockQuantity: p.StockQuantity,
	}
}
