package expense

import (
	"time"

	"github.com/kunalsh/splitledger/internal/expense/split"
)

// Category classifies an expense.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryShopping      Category = "Shopping"
	CategoryEntertainment Category = "Entertainment"
	CategoryBills         Category = "Bills"
	CategoryHealth        Category = "Health"
	CategoryTravel        Category = "Travel"
	CategoryOther         Category = "Other"
)

// Categories lists every valid category, in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryShopping,
	CategoryEntertainment,
	CategoryBills,
	CategoryHealth,
	CategoryTravel,
	CategoryOther,
}

// IsValid reports whether the category is one of the enumerated values.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Expense represents one expense and its computed split lines, owned by a
// group. The lines always sum to Amount within the monetary tolerance.
type Expense struct {
	ID          int64        `json:"id"`
	GroupID     int64        `json:"groupId"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Amount      float64      `json:"amount"`
	Category    Category     `json:"category"`
	SplitType   split.Type   `json:"splitType"`
	Date        time.Time    `json:"date"`
	PaidBy      string       `json:"paidBy"`
	CreatedBy   string       `json:"createdBy"`
	CreatedAt   time.Time    `json:"createdAt"`
	Splits      []split.Line `json:"splitDetails"`
}

// IsSettled reports whether every split line of the expense is paid.
func (e *Expense) IsSettled() bool {
	for _, l := range e.Splits {
		if !l.IsPaid {
			return false
		}
	}
	return true
}
