package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rianxlewis/routine-builder/internal/catalog"
	"github.com/rianxlewis/routine-builder/internal/models"
)

type ProductHandler struct {
	catalog *catalog.Catalog
}

func NewProductHandler(c *catalog.Catalog) *ProductHandler {
	return &ProductHandler{catalog: c}
}

// List filters the catalog by the search and category query parameters.
// Both filters compose by conjunction; empty filters return the full
// catalog in file order.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")

	products := h.catalog.Filter(term, category)
	if products == nil {
		products = []models.Product{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid product ID", r))
		return
	}

	product, ok := h.catalog.GetByID(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Product not found", r))
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Categories lists the distinct category values in first-seen order.
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories := h.catalog.Categories()
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}
