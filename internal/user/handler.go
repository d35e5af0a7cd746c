package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kunalsh/splitledger/internal/auth"
	"github.com/kunalsh/splitledger/pkg/response"
)

// Handler handles HTTP requests for user-level summaries
type Handler struct {
	service *Service
}

// NewHandler creates a new user handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for user endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/financial-summary", h.FinancialSummary)

	return r
}

// FinancialSummary handles GET /users/financial-summary
// @Summary      Get the caller's financial summary
// @Description  Paid/owed/net figures across every group the caller belongs to
// @Tags         users
// @Produce      json
// @Success      200 {object} response.APIResponse{data=FinancialSummary}
// @Router       /users/financial-summary [get]
func (h *Handler) FinancialSummary(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	summary, err := h.service.FinancialSummary(r.Context(), actor)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, summary)
}
