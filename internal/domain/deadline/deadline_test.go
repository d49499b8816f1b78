package deadline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddBusinessDays(t *testing.T) {
	t.Parallel()

	friday := day(2024, time.January, 5)
	cases := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{"zero returns start", friday, 0, friday},
		{"skips weekend", friday, 1, day(2024, time.January, 8)},
		{"full week", friday, 5, day(2024, time.January, 12)},
		{"backwards", day(2024, time.January, 8), -1, friday},
		{"from saturday", day(2024, time.January, 6), 1, day(2024, time.January, 8)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := AddBusinessDays(tc.start, tc.n)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAddBusinessDays_OutOfRange(t *testing.T) {
	t.Parallel()
	_, ok := AddBusinessDays(day(2100, time.December, 31), 1)
	assert.False(t, ok)
	_, ok = AddBusinessDays(day(1900, time.January, 1), -1)
	assert.False(t, ok)
}

func TestRemainingBusinessDays(t *testing.T) {
	t.Parallel()

	monday := day(2024, time.January, 8)
	assert.Equal(t, 5, RemainingBusinessDays(monday, day(2024, time.January, 12)))
	assert.Equal(t, 1, RemainingBusinessDays(monday, monday))
	assert.Equal(t, 2, RemainingBusinessDays(day(2024, time.January, 5), monday))
	assert.Equal(t, -1, RemainingBusinessDays(monday, day(2024, time.January, 5)))
}

func TestLabel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, LabelExpired, Label(-1))
	assert.Equal(t, LabelDueToday, Label(1))
	assert.Equal(t, "0 días restantes", Label(0))
	assert.Equal(t, "4 días restantes", Label(4))
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	attended := day(2024, time.January, 5)
	now := day(2024, time.January, 8)

	r := Evaluate(&attended, " 5 ", now)
	require.NotNil(t, r.DueDate)
	assert.Equal(t, "2024-01-12", r.DueDateString())
	assert.Equal(t, 5, r.Remaining)
	assert.Equal(t, "5 días restantes", r.Label)

	expired := Evaluate(&attended, "1", day(2024, time.February, 1))
	assert.Equal(t, LabelExpired, expired.Label)
}

func TestEvaluate_BadInput(t *testing.T) {
	t.Parallel()

	attended := day(2024, time.January, 5)
	now := day(2024, time.January, 8)

	assert.Equal(t, LabelIncomplete, Evaluate(nil, "5", now).Label)
	assert.Equal(t, LabelIncomplete, Evaluate(&attended, "  ", now).Label)
	assert.Equal(t, LabelError, Evaluate(&attended, "Audiencia 10:00", now).Label)
	assert.Equal(t, LabelError, Evaluate(&attended, "-3", now).Label)
	assert.Empty(t, Evaluate(nil, "5", now).DueDateString())
}

func TestIsNumericTerm(t *testing.T) {
	t.Parallel()
	assert.True(t, IsNumericTerm(" 10 "))
	assert.False(t, IsNumericTerm("Audiencia"))
	assert.False(t, IsNumericTerm(""))
}
