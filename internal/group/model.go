package group

import "time"

// Group represents a group in the system. The member list is ordered and
// unique, and always contains the admin email.
type Group struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	AdminEmail   string     `json:"adminEmail"`
	MemberEmails []string   `json:"membersEmail"`
	IsSettled    bool       `json:"isSettled"`
	SettledAt    *time.Time `json:"settledAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// HasMember reports whether the email belongs to the group's current
// membership.
func (g *Group) HasMember(email string) bool {
	for _, m := range g.MemberEmails {
		if m == email {
			return true
		}
	}
	return false
}
