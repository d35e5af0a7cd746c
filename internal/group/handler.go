package group

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kunalsh/splitledger/internal/auth"
	"github.com/kunalsh/splitledger/internal/balance"
	"github.com/kunalsh/splitledger/pkg/response"
)

// Summarizer computes the per-member balance summary for a group.
// Implemented by the expense service.
type Summarizer interface {
	SummarizeGroup(ctx context.Context, groupID int64) ([]balance.MemberBalance, error)
}

// Settler transitions a group into its settled state. Implemented by the
// settlement service.
type Settler interface {
	SettleGroup(ctx context.Context, actor auth.Identity, groupID int64) (*Group, error)
}

// Handler handles HTTP requests for group operations
type Handler struct {
	service    *Service
	summarizer Summarizer
	settler    Settler
}

// NewHandler creates a new group handler
func NewHandler(service *Service, summarizer Summarizer, settler Settler) *Handler {
	return &Handler{service: service, summarizer: summarizer, settler: settler}
}

// Routes returns the router for group endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	r.Patch("/{id}/members/add", h.AddMembers)
	r.Patch("/{id}/members/remove", h.RemoveMembers)

	r.Get("/{id}/balance-summary", h.BalanceSummary)
	r.Post("/{id}/settle", h.Settle)

	return r
}

// Create handles POST /groups
// @Summary      Create a new group
// @Description  Create a group with the caller as admin and sole member
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body CreateGroupRequest true "Group creation request"
// @Success      201 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /groups [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	g, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, g.ToResponse())
}

// List handles GET /groups
// @Summary      List groups
// @Description  List all groups the caller belongs to
// @Tags         groups
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]GroupResponse}
// @Router       /groups [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groups, err := h.service.List(r.Context(), actor)
	if err != nil {
		response.FromError(w, err)
		return
	}

	resp := make([]*GroupResponse, len(groups))
	for i, g := range groups {
		resp[i] = g.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// GetByID handles GET /groups/{id}
// @Summary      Get group by ID
// @Tags         groups
// @Produce      json
// @Param        id path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := groupID(r)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	g, err := h.service.GetByID(r.Context(), actor, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, g.ToResponse())
}

// Update handles PUT /groups/{id}
// @Summary      Update group details
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path int true "Group ID"
// @Param        request body UpdateGroupRequest true "Group update request"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := groupID(r)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	var req UpdateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	g, err := h.service.Update(r.Context(), actor, id, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, g.ToResponse())
}

// Delete handles DELETE /groups/{id}
// @Summary      Delete a group
// @Description  Delete a group and all of its expenses
// @Tags         groups
// @Param        id path int true "Group ID"
// @Success      204
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := groupID(r)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		response.FromError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddMembers handles PATCH /groups/{id}/members/add
// @Summary      Add members to a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path int true "Group ID"
// @Param        request body MembersRequest true "Member emails"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /groups/{id}/members/add [patch]
func (h *Handler) AddMembers(w http.ResponseWriter, r *http.Request) {
	h.changeMembers(w, r, h.service.AddMembers)
}

// RemoveMembers handles PATCH /groups/{id}/members/remove
// @Summary      Remove members from a group
// @Description  Members with unpaid expenses cannot be removed
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path int true "Group ID"
// @Param        request body MembersRequest true "Member emails"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{id}/members/remove [patch]
func (h *Handler) RemoveMembers(w http.ResponseWriter, r *http.Request) {
	h.changeMembers(w, r, h.service.RemoveMembers)
}

func (h *Handler) changeMembers(w http.ResponseWriter, r *http.Request,
	op func(context.Context, auth.Identity, int64, []string) (*Group, error)) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := groupID(r)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	var req MembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	g, err := op(r.Context(), actor, id, req.Emails)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, g.ToResponse())
}

// BalanceSummary handles GET /groups/{id}/balance-summary
// @Summary      Get the group's balance summary
// @Description  Paid/owed/net figures per member, computed fresh on every read
// @Tags         groups
// @Produce      json
// @Param        id path int true "Group ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/balance-summary [get]
func (h *Handler) BalanceSummary(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := groupID(r)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	// Membership gate first; non-members must not see balances.
	if _, err := h.service.GetByID(r.Context(), actor, id); err != nil {
		response.FromError(w, err)
		return
	}

	balances, err := h.summarizer.SummarizeGroup(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"balances": balances})
}

// Settle handles POST /groups/{id}/settle
// @Summary      Settle a group
// @Description  Marks every split paid and freezes the group. Admin only, irreversible.
// @Tags         groups
// @Produce      json
// @Param        id path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{id}/settle [post]
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := groupID(r)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	g, err := h.settler.SettleGroup(r.Context(), actor, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, g.ToResponse())
}

func groupID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
