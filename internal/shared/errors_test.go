package shared

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestErrorKindsMatchSentinels(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotFound("PERIOD_NOT_FOUND", "pay period not found"))
	require.ErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, NotFound("PERIOD_NOT_FOUND", ""))
	require.NotErrorIs(t, err, NotFound("PAYROLL_NOT_FOUND", ""))
	require.Equal(t, KindNotFound, KindOf(err))
	require.Equal(t, "PERIOD_NOT_FOUND", CodeOf(err))
	require.Equal(t, "pay period not found", UserSafeMessage(err))
}

func TestDatabaseWrapsOnlyUntaggedErrors(t *testing.T) {
	require.NoError(t, Database(nil, "noop"))

	cause := errors.New("connection reset")
	err := Database(cause, "payroll: insert")
	require.ErrorIs(t, err, ErrDatabase)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "DATABASE_ERROR", CodeOf(err))

	tagged := Validation("INVALID_SIN", "bad sin")
	require.Same(t, tagged, Database(tagged, "sin: insert"))

	require.Equal(t, "internal error", UserSafeMessage(cause))
	require.Equal(t, "INTERNAL_ERROR", CodeOf(cause))
	require.Equal(t, Kind(""), KindOf(cause))
}

func TestNormalizePage(t *testing.T) {
	page, limit, err := NormalizePage(0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, page)
	require.Equal(t, 10, limit)

	_, limit, err = NormalizePage(2, 500)
	require.NoError(t, err)
	require.Equal(t, MaxLimit, limit)

	_, _, err = NormalizePage(-1, 10)
	require.ErrorIs(t, err, ErrValidation)
	_, _, err = NormalizePage(1, -5)
	require.ErrorIs(t, err, ErrValidation)

	require.Equal(t, 20, Offset(3, 10))
	require.Equal(t, Pagination{Page: 2, Limit: 10, Total: 21, TotalPages: 3}, NewPagination(2, 10, 21))
}

func TestParsePageParams(t *testing.T) {
	page, limit, err := ParsePageParams("", "")
	require.NoError(t, err)
	require.Zero(t, page)
	require.Zero(t, limit)

	page, limit, err = ParsePageParams("3", "25")
	require.NoError(t, err)
	require.Equal(t, 3, page)
	require.Equal(t, 25, limit)

	_, _, err = ParsePageParams("abc", "")
	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, "INVALID_PAGINATION", CodeOf(err))
	_, _, err = ParsePageParams("1", "ten")
	require.ErrorIs(t, err, ErrValidation)
}

func TestDayBoundaries(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	in := time.Date(2024, 2, 29, 22, 30, 0, 0, loc)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), StartOfDayUTC(in))
	require.Equal(t, time.Date(2024, 3, 1, 23, 59, 59, 999000000, time.UTC), EndOfDayUTC(in))
	require.Equal(t, 29, DaysInMonth(2024, time.February))
	require.Equal(t, 28, DaysInMonth(2023, time.February))
	require.Equal(t, 31, DaysInMonth(2024, time.December))
}

func TestParseRole(t *testing.T) {
	require.Equal(t, RoleManager, ParseRole(" manager "))
	require.Equal(t, RoleEmployee, ParseRole("owner"))
	require.False(t, Role("OWNER").Valid())
}
