package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 {
	return &v
}

func lineSum(lines []Line) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.Amount
	}
	return sum
}

func TestEqualStrategy(t *testing.T) {
	tests := []struct {
		name         string
		amount       float64
		participants []Input
		wantErr      error
		wantAmounts  []float64
	}{
		{
			name:         "three way even split",
			amount:       300,
			participants: []Input{{Email: "a@x.com"}, {Email: "b@x.com"}, {Email: "c@x.com"}},
			wantAmounts:  []float64{100, 100, 100},
		},
		{
			name:         "remainder goes to first line",
			amount:       100,
			participants: []Input{{Email: "a@x.com"}, {Email: "b@x.com"}, {Email: "c@x.com"}},
			wantAmounts:  []float64{33.34, 33.33, 33.33},
		},
		{
			name:         "single participant",
			amount:       42.5,
			participants: []Input{{Email: "a@x.com"}},
			wantAmounts:  []float64{42.5},
		},
		{
			name:    "no participants",
			amount:  10,
			wantErr: ErrNoParticipants,
		},
		{
			name:         "non positive amount",
			amount:       0,
			participants: []Input{{Email: "a@x.com"}},
			wantErr:      ErrNegativeAmount,
		},
		{
			name:         "duplicate participant",
			amount:       10,
			participants: []Input{{Email: "a@x.com"}, {Email: "a@x.com"}},
			wantErr:      ErrDuplicateParticipant,
		},
	}

	s := &EqualStrategy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := s.Calculate(tt.amount, tt.participants)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, lines, len(tt.participants))
			for i, want := range tt.wantAmounts {
				assert.Equal(t, tt.participants[i].Email, lines[i].Email)
				assert.InDelta(t, want, lines[i].Amount, 0.001)
				assert.False(t, lines[i].IsPaid)
			}
			assert.InDelta(t, tt.amount, lineSum(lines), Tolerance)
		})
	}
}

func TestExactStrategy(t *testing.T) {
	tests := []struct {
		name         string
		amount       float64
		participants []Input
		wantErr      error
	}{
		{
			name:   "amounts sum to total",
			amount: 100,
			participants: []Input{
				{Email: "a@x.com", Amount: f(70)},
				{Email: "b@x.com", Amount: f(30)},
			},
		},
		{
			name:   "within tolerance",
			amount: 100,
			participants: []Input{
				{Email: "a@x.com", Amount: f(70)},
				{Email: "b@x.com", Amount: f(30.009)},
			},
		},
		{
			name:   "sum deviates beyond tolerance",
			amount: 100,
			participants: []Input{
				{Email: "a@x.com", Amount: f(70)},
				{Email: "b@x.com", Amount: f(29)},
			},
			wantErr: ErrInvalidExactAmounts,
		},
		{
			name:   "missing amount",
			amount: 100,
			participants: []Input{
				{Email: "a@x.com", Amount: f(100)},
				{Email: "b@x.com"},
			},
			wantErr: ErrMissingExactAmount,
		},
		{
			name:   "negative amount",
			amount: 100,
			participants: []Input{
				{Email: "a@x.com", Amount: f(110)},
				{Email: "b@x.com", Amount: f(-10)},
			},
			wantErr: ErrNegativeAmount,
		},
	}

	s := &ExactStrategy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := s.Calculate(tt.amount, tt.participants)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.amount, lineSum(lines), Tolerance)
		})
	}
}

func TestPercentageStrategy(t *testing.T) {
	tests := []struct {
		name         string
		amount       float64
		participants []Input
		wantErr      error
		wantAmounts  []float64
	}{
		{
			name:   "sixty forty",
			amount: 100,
			participants: []Input{
				{Email: "a@x.com", Percentage: f(60)},
				{Email: "b@x.com", Percentage: f(40)},
			},
			wantAmounts: []float64{60, 40},
		},
		{
			name:   "percentages short of 100",
			amount: 100,
			participants: []Input{
				{Email: "a@x.com", Percentage: f(60)},
				{Email: "b@x.com", Percentage: f(39)},
			},
			wantErr: ErrInvalidPercentages,
		},
		{
			name:   "missing percentage",
			amount: 100,
			participants: []Input{
				{Email: "a@x.com", Percentage: f(100)},
				{Email: "b@x.com"},
			},
			wantErr: ErrMissingPercentage,
		},
		{
			name:   "percentage out of range",
			amount: 100,
			participants: []Input{
				{Email: "a@x.com", Percentage: f(110)},
				{Email: "b@x.com", Percentage: f(-10)},
			},
			wantErr: ErrPercentageOutOfRange,
		},
		{
			name:   "rounding remainder lands on last line",
			amount: 100,
			participants: []Input{
				{Email: "a@x.com", Percentage: f(33.335)},
				{Email: "b@x.com", Percentage: f(33.335)},
				{Email: "c@x.com", Percentage: f(33.33)},
			},
			wantAmounts: []float64{33.34, 33.34, 33.32},
		},
	}

	s := &PercentageStrategy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := s.Calculate(tt.amount, tt.participants)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			for i, want := range tt.wantAmounts {
				assert.InDelta(t, want, lines[i].Amount, 0.001)
			}
			assert.InDelta(t, tt.amount, lineSum(lines), Tolerance)
		})
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	factory := NewFactory()
	participants := []Input{
		{Email: "a@x.com", Percentage: f(33.3)},
		{Email: "b@x.com", Percentage: f(33.3)},
		{Email: "c@x.com", Percentage: f(33.4)},
	}

	s, err := factory.Create(TypePercentage)
	require.NoError(t, err)

	first, err := s.Calculate(99.99, participants)
	require.NoError(t, err)
	second, err := s.Calculate(99.99, participants)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFactory(t *testing.T) {
	factory := NewFactory()

	for _, st := range []Type{TypeEqual, TypeExact, TypePercentage} {
		s, err := factory.Create(st)
		require.NoError(t, err)
		assert.Equal(t, st, s.Type())
	}

	_, err := factory.CreateFromString("weighted")
	assert.ErrorIs(t, err, ErrUnknownSplitType)
}
