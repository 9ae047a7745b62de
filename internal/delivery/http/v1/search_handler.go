package v1

import (
	"net/http"

	"storefront-backend/internal/delivery/http/middleware"
	"storefront-backend/internal/domain"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/utils"
)

type SearchHandler struct {
	lookup domain.CustomerLookup
}

func NewSearchHandler(lookup domain.CustomerLookup) *SearchHandler {
	return &SearchHandler{lookup: lookup}
}

type searchInputReq struct {
	Term string `json:"term"`
}

// SubmitInput feeds one search-box input event into the session's pipeline
// and returns the state right after it. Lookups finish asynchronously; poll
// GetState for the results.
func (h *SearchHandler) SubmitInput(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req searchInputReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteRequestError(w, err)
		return
	}

	sess.Search.OnInput(req.Term)
	utils.WriteJSON(w, http.StatusAccepted, domain.Response{
		Success: true,
		Data:    sess.Search.State(),
	})
}

func (h *SearchHandler) GetState(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Data:    sess.Search.State(),
	})
}

// SearchCustomers is a one-shot lookup without debounce, for clients that
// do their own.
func (h *SearchHandler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	results, err := h.lookup.Search(r.Context(), query)
	if err != nil {
		logger.WithContext(r.Context()).Error().Err(err).Str("q", query).Msg("Customer search failed")
		utils.WriteError(w, http.StatusBadGateway, "Search failed")
		return
	}

	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Data:    results,
	})
}
