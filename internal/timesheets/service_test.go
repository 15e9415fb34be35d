package timesheets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

type memoryTimesheetRepo struct {
	records []TimeRecord
}

func (r *memoryTimesheetRepo) Insert(ctx context.Context, rec TimeRecord) (TimeRecord, error) {
	rec.ID = int64(len(r.records) + 1)
	r.records = append(r.records, rec)
	return rec, nil
}

func (r *memoryTimesheetRepo) List(ctx context.Context, filters ListFilters) ([]TimeRecord, int, error) {
	var out []TimeRecord
	for _, rec := range r.records {
		if filters.EmployeeID != 0 && rec.EmployeeID != filters.EmployeeID {
			continue
		}
		if filters.From != nil && rec.StartTime.Before(*filters.From) {
			continue
		}
		if filters.To != nil && rec.StartTime.After(*filters.To) {
			continue
		}
		out = append(out, rec)
	}
	return out, len(out), nil
}

type staticRates map[int64]float64

func (s staticRates) PayRate(ctx context.Context, id int64) (float64, error) {
	rate, ok := s[id]
	if !ok {
		return 0, shared.NotFound("EMPLOYEE_NOT_FOUND", "employee not found")
	}
	return rate, nil
}

func ptr(v float64) *float64 { return &v }

func TestCreateDerivesOvertimeFromShiftLength(t *testing.T) {
	svc := NewService(&memoryTimesheetRepo{}, staticRates{1: 25})
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

	rec, err := svc.Create(context.Background(), CreateInput{EmployeeID: 1, StartTime: start, EndTime: start.Add(10 * time.Hour)})
	require.NoError(t, err)
	require.Equal(t, 8.0, rec.RegularHours)
	require.Equal(t, 2.0, rec.OvertimeHours)
	require.Equal(t, 10.0, rec.TotalHours)
	require.Equal(t, 275.0, rec.TotalPay)
}

func TestCreateHonoursExplicitHours(t *testing.T) {
	svc := NewService(&memoryTimesheetRepo{}, staticRates{1: 20})
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

	rec, err := svc.Create(context.Background(), CreateInput{
		EmployeeID: 1, StartTime: start, EndTime: start.Add(6 * time.Hour),
		RegularHours: ptr(5.5), OvertimeHours: ptr(0),
	})
	require.NoError(t, err)
	require.Equal(t, 5.5, rec.RegularHours)
	require.Equal(t, 110.0, rec.TotalPay)
}

func TestCreateTreatsMissingHourFieldAsZero(t *testing.T) {
	svc := NewService(&memoryTimesheetRepo{}, staticRates{1: 20})
	ctx := context.Background()
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

	rec, err := svc.Create(ctx, CreateInput{
		EmployeeID: 1, StartTime: start, EndTime: start.Add(10 * time.Hour), RegularHours: ptr(10),
	})
	require.NoError(t, err)
	require.Equal(t, 10.0, rec.RegularHours)
	require.Zero(t, rec.OvertimeHours)
	require.Equal(t, 10.0, rec.TotalHours)
	require.Equal(t, 200.0, rec.TotalPay)

	rec, err = svc.Create(ctx, CreateInput{
		EmployeeID: 1, StartTime: start, EndTime: start.Add(3 * time.Hour), OvertimeHours: ptr(3),
	})
	require.NoError(t, err)
	require.Zero(t, rec.RegularHours)
	require.Equal(t, 90.0, rec.TotalPay)
}

func TestCreateRejectsHoursBeyondShift(t *testing.T) {
	repo := &memoryTimesheetRepo{}
	svc := NewService(repo, staticRates{1: 20})
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

	_, err := svc.Create(context.Background(), CreateInput{
		EmployeeID: 1, StartTime: start, EndTime: start.Add(8 * time.Hour),
		RegularHours: ptr(8), OvertimeHours: ptr(1),
	})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Equal(t, "INVALID_HOURS", shared.CodeOf(err))
	require.Empty(t, repo.records)
}

func TestCreateValidates(t *testing.T) {
	svc := NewService(&memoryTimesheetRepo{}, staticRates{1: 20})
	ctx := context.Background()
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, CreateInput{EmployeeID: 1, StartTime: start, EndTime: start})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, CreateInput{EmployeeID: 1, StartTime: start, EndTime: start.Add(time.Hour), RegularHours: ptr(-1)})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, CreateInput{EmployeeID: 2, StartTime: start, EndTime: start.Add(time.Hour)})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListNormalisesDayRange(t *testing.T) {
	repo := &memoryTimesheetRepo{}
	svc := NewService(repo, staticRates{1: 20, 2: 20})
	ctx := context.Background()
	for day := 1; day <= 5; day++ {
		start := time.Date(2024, 3, day, 22, 0, 0, 0, time.UTC)
		_, err := svc.Create(ctx, CreateInput{EmployeeID: int64(day%2 + 1), StartTime: start, EndTime: start.Add(time.Hour)})
		require.NoError(t, err)
	}

	from := time.Date(2024, 3, 2, 23, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	page, err := svc.List(ctx, ListFilters{From: &from, To: &to})
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)

	own, err := svc.List(ctx, ListFilters{EmployeeID: 1})
	require.NoError(t, err)
	require.Equal(t, 2, own.Total)
}

func TestSplitHours(t *testing.T) {
	r, o := SplitHours(7.5)
	require.Equal(t, 7.5, r)
	require.Zero(t, o)
	r, o = SplitHours(12)
	require.Equal(t, 8.0, r)
	require.Equal(t, 4.0, o)
}
