package user

// GroupSummary is one group's slice of a user's financial picture.
type GroupSummary struct {
	GroupID     int64   `json:"groupId"`
	GroupName   string  `json:"groupName"`
	MemberCount int     `json:"memberCount"`
	IsAdmin     bool    `json:"isAdmin"`
	IsSettled   bool    `json:"isSettled"`
	TotalPaid   float64 `json:"totalPaid"`
	TotalShare  float64 `json:"totalShare"`
	NetBalance  float64 `json:"netBalance"`
}

// FinancialSummary aggregates a user's position across every group they
// belong to. TotalToPay and TotalToReceive accumulate only the negative and
// positive per-group nets respectively, so they never cancel against each
// other.
type FinancialSummary struct {
	TotalToPay     float64        `json:"totalToPay"`
	TotalToReceive float64        `json:"totalToReceive"`
	NetBalance     float64        `json:"netBalance"`
	GroupCount     int            `json:"groupCount"`
	Groups         []GroupSummary `json:"groups"`
}
