package split

// EqualStrategy divides the expense evenly among all participants.
type EqualStrategy struct{}

// Type returns the split type identifier
func (s *EqualStrategy) Type() Type {
	return TypeEqual
}

// Validate checks if the inputs are valid for an equal split
func (s *EqualStrategy) Validate(totalAmount float64, participants []Input) error {
	return validateCommon(totalAmount, participants)
}

// Calculate divides the total amount evenly among all participants. Shares
// are rounded to cents; the rounding remainder is assigned to the first
// line so the lines always sum back to the total exactly.
func (s *EqualStrategy) Calculate(totalAmount float64, participants []Input) ([]Line, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	share := roundToCents(totalAmount / float64(len(participants)))
	remainder := roundToCents(totalAmount - share*float64(len(participants)))

	lines := make([]Line, len(participants))
	for i, p := range participants {
		amount := share
		if i == 0 {
			amount = roundToCents(amount + remainder)
		}
		lines[i] = Line{
			Email:  p.Email,
			Amount: amount,
		}
	}

	return lines, nil
}
