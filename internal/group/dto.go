package group

import "time"

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,min=3"`
	Description string `json:"description" validate:"required,min=3"`
}

// UpdateGroupRequest represents the request to update a group's details
type UpdateGroupRequest struct {
	Name        string `json:"name" validate:"required,min=3"`
	Description string `json:"description" validate:"required,min=3"`
}

// MembersRequest carries the member emails for an add or remove operation
type MembersRequest struct {
	Emails []string `json:"emails" validate:"required,min=1"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	AdminEmail   string   `json:"adminEmail"`
	MembersEmail []string `json:"membersEmail"`
	MemberCount  int      `json:"memberCount"`
	IsSettled    bool     `json:"isSettled"`
	SettledAt    *string  `json:"settledAt,omitempty"`
	CreatedAt    string   `json:"createdAt"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	resp := &GroupResponse{
		ID:           g.ID,
		Name:         g.Name,
		Description:  g.Description,
		AdminEmail:   g.AdminEmail,
		MembersEmail: g.MemberEmails,
		MemberCount:  len(g.MemberEmails),
		IsSettled:    g.IsSettled,
		CreatedAt:    g.CreatedAt.Format(time.RFC3339),
	}
	if g.SettledAt != nil {
		settled := g.SettledAt.Format(time.RFC3339)
		resp.SettledAt = &settled
	}
	return resp
}
