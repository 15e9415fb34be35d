package dashboard

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	calls    atomic.Int32
	active   int
	gross    float64
	loadWait time.Duration
}

func (s *stubRepo) ActiveEmployees(ctx context.Context) (int, error) {
	s.calls.Add(1)
	if s.loadWait > 0 {
		time.Sleep(s.loadWait)
	}
	return s.active, nil
}

func (s *stubRepo) CurrentPeriod(ctx context.Context) (*PeriodSummary, error) {
	return &PeriodSummary{ID: 3, PeriodType: "FIRST_HALF", Status: "PROCESSING"}, nil
}

func (s *stubRepo) LatestPayrollTotals(ctx context.Context) (*PayrollTotals, error) {
	return &PayrollTotals{PeriodID: 2, Employees: 4, TotalHours: 320, GrossPay: s.gross}, nil
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSummaryIsCachedUntilBump(t *testing.T) {
	cache, _ := newTestCache(t)
	repo := &stubRepo{active: 12, gross: 12345.6}
	svc := NewService(repo, cache, discardLogger())
	ctx := context.Background()

	first, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 12, first.ActiveEmployees)
	require.Equal(t, "$12,345.60", first.LatestPayroll.GrossPayText)
	require.Equal(t, int64(3), first.CurrentPeriod.ID)

	repo.active = 13
	cached, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 12, cached.ActiveEmployees)
	require.EqualValues(t, 1, repo.calls.Load())

	require.NoError(t, cache.Bump(ctx))
	fresh, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 13, fresh.ActiveEmployees)
	require.EqualValues(t, 2, repo.calls.Load())
}

func TestSummaryCollapsesConcurrentMisses(t *testing.T) {
	cache, _ := newTestCache(t)
	repo := &stubRepo{active: 5, loadWait: 50 * time.Millisecond}
	svc := NewService(repo, cache, discardLogger())

	var wg sync.WaitGroup
	results := make(chan Summary, 8)
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := svc.Summary(context.Background())
			if err != nil {
				errs <- err
				return
			}
			results <- s
		}()
	}
	wg.Wait()
	close(results)
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	for s := range results {
		require.Equal(t, 5, s.ActiveEmployees)
	}
	require.EqualValues(t, 1, repo.calls.Load())
}

func TestSummaryWithoutCache(t *testing.T) {
	repo := &stubRepo{active: 2}
	svc := NewService(repo, nil, discardLogger())

	_, err := svc.Summary(context.Background())
	require.NoError(t, err)
	_, err = svc.Summary(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, repo.calls.Load())
}

func TestCacheVersionInitialisesAndBumps(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	ver, err := cache.Version(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, ver)

	key, err := cache.BuildKey(ctx, "dashboard", "summary")
	require.NoError(t, err)
	require.Equal(t, "dashboard:summary:1", key)

	require.NoError(t, cache.Bump(ctx))
	got, err := mr.Get(cacheVersionKey)
	require.NoError(t, err)
	require.Equal(t, "2", got)
}

func TestFormatCurrency(t *testing.T) {
	svc := NewService(&stubRepo{}, nil, discardLogger())
	require.Equal(t, "$0.00", svc.FormatCurrency(0))
	require.Equal(t, "$1,000,000.25", svc.FormatCurrency(1000000.25))
}
