package split

import "math"

// PercentageStrategy divides the expense according to caller-supplied
// percentages that must sum to 100.
type PercentageStrategy struct{}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() Type {
	return TypePercentage
}

// Validate checks if the inputs are valid for a percentage split
func (s *PercentageStrategy) Validate(totalAmount float64, participants []Input) error {
	if err := validateCommon(totalAmount, participants); err != nil {
		return err
	}

	var sum float64
	for _, p := range participants {
		if p.Percentage == nil {
			return ErrMissingPercentage
		}
		if *p.Percentage < 0 || *p.Percentage > 100 {
			return ErrPercentageOutOfRange
		}
		sum += *p.Percentage
	}

	if math.Abs(sum-100) > Tolerance {
		return ErrInvalidPercentages
	}

	return nil
}

// Calculate computes each line as amount * percentage / 100, rounded to
// cents. The rounding remainder is assigned to the last line so the lines
// sum back to the total exactly.
func (s *PercentageStrategy) Calculate(totalAmount float64, participants []Input) ([]Line, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	lines := make([]Line, len(participants))
	var distributed float64
	for i, p := range participants {
		pct := *p.Percentage
		amount := roundToCents(totalAmount * pct / 100)
		distributed += amount
		lines[i] = Line{
			Email:      p.Email,
			Amount:     amount,
			Percentage: &pct,
		}
	}

	remainder := roundToCents(totalAmount - distributed)
	if remainder != 0 {
		last := len(lines) - 1
		lines[last].Amount = roundToCents(lines[last].Amount + remainder)
	}

	return lines, nil
}
