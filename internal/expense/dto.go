package expense

import (
	"time"

	"github.com/kunalsh/splitledger/internal/expense/split"
)

// CreateExpenseRequest represents the request to create an expense
type CreateExpenseRequest struct {
	GroupID      int64         `json:"groupId" validate:"required"`
	Title        string        `json:"title" validate:"required,min=3"`
	Description  string        `json:"description,omitempty"`
	Amount       float64       `json:"amount" validate:"required,gt=0"`
	Category     string        `json:"category" validate:"required"`
	SplitType    string        `json:"splitType" validate:"required,oneof=equal exact percentage"`
	Date         string        `json:"date" validate:"required"` // YYYY-MM-DD
	PaidBy       string        `json:"paidBy" validate:"required,email"`
	Participants []split.Input `json:"participants" validate:"required,min=1"`
}

// UpdateExpenseRequest represents the request to edit an expense. Edits
// replace the whole record: the split is recomputed and payment progress on
// the old lines is discarded.
type UpdateExpenseRequest struct {
	Title        string        `json:"title" validate:"required,min=3"`
	Description  string        `json:"description,omitempty"`
	Amount       float64       `json:"amount" validate:"required,gt=0"`
	Category     string        `json:"category" validate:"required"`
	SplitType    string        `json:"splitType" validate:"required,oneof=equal exact percentage"`
	Date         string        `json:"date" validate:"required"`
	PaidBy       string        `json:"paidBy" validate:"required,email"`
	Participants []split.Input `json:"participants" validate:"required,min=1"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID           int64        `json:"id"`
	GroupID      int64        `json:"groupId"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Amount       float64      `json:"amount"`
	Category     Category     `json:"category"`
	SplitType    split.Type   `json:"splitType"`
	Date         string       `json:"date"`
	PaidBy       string       `json:"paidBy"`
	CreatedBy    string       `json:"createdBy"`
	CreatedAt    string       `json:"createdAt"`
	IsSettled    bool         `json:"isSettled"`
	SplitDetails []split.Line `json:"splitDetails"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	return &ExpenseResponse{
		ID:           e.ID,
		GroupID:      e.GroupID,
		Title:        e.Title,
		Description:  e.Description,
		Amount:       e.Amount,
		Category:     e.Category,
		SplitType:    e.SplitType,
		Date:         e.Date.Format("2006-01-02"),
		PaidBy:       e.PaidBy,
		CreatedBy:    e.CreatedBy,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		IsSettled:    e.IsSettled(),
		SplitDetails: e.Splits,
	}
}
