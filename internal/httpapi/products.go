package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/luyao-shop/storefront/internal/catalog"
	"github.com/luyao-shop/storefront/internal/domain"
)

type ProductHandler struct {
	catalog *catalog.Manager
	logger  *slog.Logger
}

func NewProductHandler(catalog *catalog.Manager, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, logger: logger}
}

// HandleList serves the full catalogue; ?q= narrows by keyword, ?category=
// by category and ?active=true to shopper-visible products. Filters combine
// by precedence, not intersection.
func (h *ProductHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var products []domain.Product
	switch {
	case r.URL.Query().Get("q") != "":
		products = h.catalog.Search(r.URL.Query().Get("q"))
	case r.URL.Query().Get("category") != "":
		products = h.catalog.ByCategory(domain.ProductCategory(r.URL.Query().Get("category")))
	case r.URL.Query().Get("active") == "true":
		products = h.catalog.Active()
	default:
		products = h.catalog.All()
	}
	writeJSON(w, h.logger, http.StatusOK, products)
}

func (h *ProductHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, p)
}

func (h *ProductHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in domain.Product
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.catalog.Create(r.Context(), in)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("product created", "product_id", p.ID, "name", p.Name)
	writeJSON(w, h.logger, http.StatusCreated, p)
}

func (h *ProductHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch domain.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.catalog.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, p)
}

func (h *ProductHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.catalog.Delete(r.Context(), id); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("product deleted", "product_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) HandleToggleStatus(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.ToggleStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, p)
}

type updateStockRequest struct {
	Stock int `json:"stock"`
}

func (h *ProductHandler) HandleUpdateStock(w http.ResponseWriter, r *http.Request) {
	var req updateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.catalog.UpdateStock(r.Context(), r.PathValue("id"), req.Stock)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, p)
}
