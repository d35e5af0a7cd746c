// Package balance derives paid/owed/net figures by folding over a group's
// expenses. It is pure: callers adapt stored records into the minimal input
// types below, and identical inputs always produce identical summaries.
package balance

// Share is one member's obligation within an expense.
type Share struct {
	Email  string
	Amount float64
}

// Expense carries the minimal expense information needed for balance
// calculations.
type Expense struct {
	PaidBy string
	Amount float64
	Shares []Share
}

// MemberBalance is the derived per-member summary for one group. Positive
// NetBalance means the member is owed money by the group.
type MemberBalance struct {
	Email      string  `json:"email"`
	TotalPaid  float64 `json:"totalPaid"`
	TotalOwed  float64 `json:"totalOwed"`
	NetBalance float64 `json:"netBalance"`
}

// Summarize folds all expenses into one MemberBalance per member. Every
// email in members appears in the result, zero-valued when inactive, in the
// given order. Payers or share holders not present in members (historical
// members) are appended after, in order of first appearance. Sums are never
// rounded here; rounding is a presentation concern.
func Summarize(members []string, expenses []Expense) []MemberBalance {
	index := make(map[string]int, len(members))
	summaries := make([]MemberBalance, 0, len(members))

	at := func(email string) *MemberBalance {
		i, ok := index[email]
		if !ok {
			i = len(summaries)
			index[email] = i
			summaries = append(summaries, MemberBalance{Email: email})
		}
		return &summaries[i]
	}

	for _, m := range members {
		at(m)
	}

	for _, e := range expenses {
		at(e.PaidBy).TotalPaid += e.Amount
		for _, s := range e.Shares {
			at(s.Email).TotalOwed += s.Amount
		}
	}

	for i := range summaries {
		summaries[i].NetBalance = summaries[i].TotalPaid - summaries[i].TotalOwed
	}

	return summaries
}
