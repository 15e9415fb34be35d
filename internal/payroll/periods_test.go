package payroll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

func TestResolvePeriodBounds(t *testing.T) {
	first := ResolvePeriodBounds(2024, time.March, true)
	require.Equal(t, "2024-03-01T00:00:00.000Z", first.Start.Format("2006-01-02T15:04:05.000Z07:00"))
	require.Equal(t, "2024-03-15T23:59:59.999Z", first.End.Format("2006-01-02T15:04:05.000Z07:00"))

	leap := ResolvePeriodBounds(2024, time.February, false)
	require.Equal(t, time.Date(2024, 2, 16, 0, 0, 0, 0, time.UTC), leap.Start)
	require.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 999_000_000, time.UTC), leap.End)

	common := ResolvePeriodBounds(2023, time.February, false)
	require.Equal(t, 28, common.End.Day())

	december := ResolvePeriodBounds(2024, time.December, false)
	require.Equal(t, 31, december.End.Day())
	require.Equal(t, time.UTC, december.End.Location())
}

func TestBoundsContains(t *testing.T) {
	b := ResolvePeriodBounds(2024, time.March, true)
	require.True(t, b.Contains(b.Start))
	require.True(t, b.Contains(b.End))
	require.False(t, b.Contains(b.End.Add(time.Millisecond)))
	require.False(t, b.Contains(b.Start.Add(-time.Millisecond)))
}

func TestPeriodTypeFor(t *testing.T) {
	pt, year, month := PeriodTypeFor(time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC))
	require.Equal(t, FirstHalf, pt)
	require.Equal(t, 2024, year)
	require.Equal(t, time.March, month)

	pt, _, _ = PeriodTypeFor(time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC))
	require.Equal(t, SecondHalf, pt)
}

func TestParsePeriodType(t *testing.T) {
	pt, err := ParsePeriodType("first_half")
	require.NoError(t, err)
	require.Equal(t, FirstHalf, pt)

	_, err = ParsePeriodType("WEEKLY")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestValidatePeriodTransition(t *testing.T) {
	require.NoError(t, ValidatePeriodTransition(PeriodProcessing, PeriodCompleted))

	err := ValidatePeriodTransition(PeriodCompleted, PeriodProcessing)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Equal(t, "Cannot change status of COMPLETED pay period", shared.UserSafeMessage(err))

	err = ValidatePeriodTransition(PeriodCompleted, PeriodCompleted)
	require.Equal(t, "Cannot change status of COMPLETED pay period", shared.UserSafeMessage(err))

	err = ValidatePeriodTransition(PeriodProcessing, PeriodProcessing)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Contains(t, shared.UserSafeMessage(err), "PROCESSING")
}

func TestValidatePayrollTransition(t *testing.T) {
	require.NoError(t, ValidatePayrollTransition(PayrollDraft, PayrollConfirmed))
	require.NoError(t, ValidatePayrollTransition(PayrollConfirmed, PayrollSent))
	require.NoError(t, ValidatePayrollTransition(PayrollSent, PayrollCompleted))

	require.ErrorIs(t, ValidatePayrollTransition(PayrollDraft, PayrollSent), shared.ErrValidation)
	require.ErrorIs(t, ValidatePayrollTransition(PayrollSent, PayrollDraft), shared.ErrValidation)
	require.ErrorIs(t, ValidatePayrollTransition(PayrollCompleted, PayrollDraft), shared.ErrValidation)
}
