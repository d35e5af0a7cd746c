package split

import (
	"errors"
	"fmt"
	"math"
)

// Type defines the split policy
type Type string

const (
	TypeEqual      Type = "equal"
	TypePercentage Type = "percentage"
	TypeExact      Type = "exact"
)

// Tolerance is the fixed tolerance for monetary equality checks.
const Tolerance = 0.01

// Input represents a participant in a split with optional policy parameters
type Input struct {
	Email      string   `json:"email"`
	Percentage *float64 `json:"percentage,omitempty"` // for percentage splits
	Amount     *float64 `json:"amount,omitempty"`     // for exact splits
}

// Line is one member's calculated obligation for one expense
type Line struct {
	Email      string   `json:"email"`
	Amount     float64  `json:"amount"`
	Percentage *float64 `json:"percentage,omitempty"`
	IsPaid     bool     `json:"isPaid"`
}

// Strategy is the interface that all split strategies must implement.
// Implementations are pure: no I/O, and identical inputs always yield
// identical outputs.
type Strategy interface {
	// Calculate computes one obligation line per participant, payer included.
	Calculate(totalAmount float64, participants []Input) ([]Line, error)

	// Type returns the type identifier for this strategy
	Type() Type

	// Validate checks if the inputs are valid for this strategy
	Validate(totalAmount float64, participants []Input) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewFactory creates a new factory instance
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the type
func (f *Factory) Create(splitType Type) (Strategy, error) {
	switch splitType {
	case TypeEqual:
		return &EqualStrategy{}, nil
	case TypePercentage:
		return &PercentageStrategy{}, nil
	case TypeExact:
		return &ExactStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSplitType, splitType)
	}
}

// CreateFromString creates a strategy from a string type (useful for API requests)
func (f *Factory) CreateFromString(splitType string) (Strategy, error) {
	return f.Create(Type(splitType))
}

var (
	ErrUnknownSplitType     = errors.New("unknown split type")
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrDuplicateParticipant = errors.New("participants must be unique")
	ErrInvalidPercentages   = errors.New("percentages must sum to 100")
	ErrInvalidExactAmounts  = errors.New("exact amounts must sum to total amount")
	ErrNegativeAmount       = errors.New("amounts cannot be negative")
	ErrMissingPercentage    = errors.New("percentage value required for all participants")
	ErrMissingExactAmount   = errors.New("exact amount required for all participants")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
)

// validateCommon runs the checks shared by every strategy.
func validateCommon(totalAmount float64, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount <= 0 {
		return ErrNegativeAmount
	}
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if seen[p.Email] {
			return ErrDuplicateParticipant
		}
		seen[p.Email] = true
	}
	return nil
}

// roundToCents rounds a float to 2 decimal places
func roundToCents(value float64) float64 {
	return math.Round(value*100) / 100
}
