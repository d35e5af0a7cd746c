package split

import "math"

// ExactStrategy takes caller-supplied per-member amounts that must sum to
// the expense total.
type ExactStrategy struct{}

// Type returns the split type identifier
func (s *ExactStrategy) Type() Type {
	return TypeExact
}

// Validate checks if the inputs are valid for an exact split
func (s *ExactStrategy) Validate(totalAmount float64, participants []Input) error {
	if err := validateCommon(totalAmount, participants); err != nil {
		return err
	}

	var sum float64
	for _, p := range participants {
		if p.Amount == nil {
			return ErrMissingExactAmount
		}
		if *p.Amount < 0 {
			return ErrNegativeAmount
		}
		sum += *p.Amount
	}

	if math.Abs(sum-totalAmount) > Tolerance {
		return ErrInvalidExactAmounts
	}

	return nil
}

// Calculate returns the amounts specified for each participant, unchanged
// beyond cent rounding.
func (s *ExactStrategy) Calculate(totalAmount float64, participants []Input) ([]Line, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	lines := make([]Line, len(participants))
	for i, p := range participants {
		lines[i] = Line{
			Email:  p.Email,
			Amount: roundToCents(*p.Amount),
		}
	}

	return lines, nil
}
