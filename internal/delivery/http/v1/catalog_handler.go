package v1

import (
	"net/http"

	"storefront-backend/internal/domain"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/utils"
)

type CatalogHandler struct {
	catalog domain.ProductCatalog
}

func NewCatalogHandler(catalog domain.ProductCatalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		logger.WithContext(r.Context()).Error().Err(err).Msg("Failed to list products")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}

	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Data:    products,
		Meta:    map[string]int{"total": len(products)},
	})
}
