package employees

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

type memoryEmployeeRepo struct {
	rows   map[int64]Employee
	nextID int64
}

func newMemoryEmployeeRepo() *memoryEmployeeRepo {
	return &memoryEmployeeRepo{rows: make(map[int64]Employee)}
}

func (r *memoryEmployeeRepo) Insert(ctx context.Context, e Employee) (Employee, error) {
	for _, existing := range r.rows {
		if existing.Email == e.Email {
			return Employee{}, ErrEmailTaken
		}
	}
	r.nextID++
	e.ID = r.nextID
	e.CreatedAt = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	e.UpdatedAt = e.CreatedAt
	r.rows[e.ID] = e
	return e, nil
}

func (r *memoryEmployeeRepo) Get(ctx context.Context, id int64) (Employee, error) {
	e, ok := r.rows[id]
	if !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	return e, nil
}

func (r *memoryEmployeeRepo) FindByEmail(ctx context.Context, email string) (Employee, error) {
	for _, e := range r.rows {
		if strings.EqualFold(e.Email, email) {
			return e, nil
		}
	}
	return Employee{}, ErrEmployeeNotFound
}

func (r *memoryEmployeeRepo) List(ctx context.Context, filters ListFilters) ([]Employee, int, error) {
	var matched []Employee
	for _, e := range r.rows {
		if filters.Role != "" && e.Role != filters.Role {
			continue
		}
		if filters.Active != nil && e.IsActive != *filters.Active {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(e.FullName()+" "+e.Email), strings.ToLower(filters.Search)) {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := len(matched)
	start := shared.Offset(filters.Page, filters.Limit)
	if start > total {
		start = total
	}
	end := start + filters.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *memoryEmployeeRepo) Update(ctx context.Context, e Employee) (Employee, error) {
	if _, ok := r.rows[e.ID]; !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	r.rows[e.ID] = e
	return e, nil
}

func newTestService() (*Service, *memoryEmployeeRepo) {
	repo := newMemoryEmployeeRepo()
	svc := NewService(repo)
	svc.WithHashCost(bcrypt.MinCost)
	return svc, repo
}

func TestCreateHashesPasswordAndDefaultsRole(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	e, err := svc.Create(ctx, CreateInput{FirstName: " Avery ", LastName: "Chen", Email: "Avery@Payroll.local ", Password: "employee123", PayRate: 25})
	require.NoError(t, err)
	require.Equal(t, "avery@payroll.local", e.Email)
	require.Equal(t, "Avery", e.FirstName)
	require.Equal(t, shared.RoleEmployee, e.Role)
	require.True(t, e.IsActive)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte("employee123")))

	_, err = svc.Create(ctx, CreateInput{FirstName: "A", LastName: "B", Email: "avery@payroll.local", Password: "employee123"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []CreateInput{
		{FirstName: "A", LastName: "B", Email: "", Password: "employee123"},
		{FirstName: "A", LastName: "B", Email: "a@b.c", Password: "short"},
		{FirstName: "A", LastName: "B", Email: "a@b.c", Password: "employee123", PayRate: -1},
		{FirstName: "A", LastName: "B", Email: "a@b.c", Password: "employee123", Role: "ADMIN"},
	}
	for _, in := range cases {
		_, err := svc.Create(ctx, in)
		require.ErrorIs(t, err, shared.ErrValidation)
	}
}

func TestUpdateAndRoleResolution(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	e, err := svc.Create(ctx, CreateInput{FirstName: "Jordan", LastName: "Patel", Email: "jordan@payroll.local", Password: "employee123", PayRate: 20})
	require.NoError(t, err)

	role := "manager"
	rate := 30.0
	updated, err := svc.Update(ctx, e.ID, UpdateInput{Role: &role, PayRate: &rate})
	require.NoError(t, err)
	require.Equal(t, shared.RoleManager, updated.Role)

	got, err := svc.EmployeeRole(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, shared.RoleManager, got)

	payRate, err := svc.PayRate(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, 30.0, payRate)

	inactive := false
	_, err = svc.Update(ctx, e.ID, UpdateInput{IsActive: &inactive})
	require.NoError(t, err)
	_, err = svc.EmployeeRole(ctx, e.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	exists, err := svc.EmployeeExists(ctx, e.ID)
	require.NoError(t, err)
	require.True(t, exists)
	exists, err = svc.EmployeeExists(ctx, 999)
	require.NoError(t, err)
	require.False(t, exists)

	bad := "OWNER"
	_, err = svc.Update(ctx, e.ID, UpdateInput{Role: &bad})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestListPaginates(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	for _, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		_, err := svc.Create(ctx, CreateInput{FirstName: "F", LastName: "L", Email: email, Password: "employee123"})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, ListFilters{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, 3, page.Pagination.Total)
	require.Equal(t, 2, page.Pagination.TotalPages)

	page, err = svc.List(ctx, ListFilters{Search: "nobody"})
	require.NoError(t, err)
	require.NotNil(t, page.Data)
	require.Empty(t, page.Data)

	_, err = svc.List(ctx, ListFilters{Page: -1})
	require.ErrorIs(t, err, shared.ErrValidation)
}
