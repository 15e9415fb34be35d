package dashboard

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Service assembles the dashboard summary.
type Service struct {
	repo    Repository
	cache   *Cache
	logger  *slog.Logger
	group   singleflight.Group
	printer *message.Printer
	now     func() time.Time
}

// NewService builds Service instance. cache may be nil.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		cache:   cache,
		logger:  logger,
		printer: message.NewPrinter(language.English),
		now:     time.Now,
	}
}

// Summary returns the cached overview, loading it once per cache version.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	key, err := s.cache.BuildKey(ctx, "dashboard", "summary")
	if err != nil {
		s.logger.Warn("dashboard cache key", slog.Any("error", err))
		return s.load(ctx)
	}
	res := s.group.DoChan(key, func() (any, error) {
		var out Summary
		err := s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
			return s.load(ctx)
		})
		return out, err
	})
	select {
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	case r := <-res:
		if r.Err != nil {
			return Summary{}, r.Err
		}
		return r.Val.(Summary), nil
	}
}

func (s *Service) load(ctx context.Context) (Summary, error) {
	out := Summary{GeneratedAt: s.now().UTC()}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.ActiveEmployees(ctx)
		out.ActiveEmployees = n
		return err
	})
	g.Go(func() error {
		p, err := s.repo.CurrentPeriod(ctx)
		out.CurrentPeriod = p
		return err
	})
	g.Go(func() error {
		t, err := s.repo.LatestPayrollTotals(ctx)
		if t != nil {
			t.GrossPayText = s.FormatCurrency(t.GrossPay)
		}
		out.LatestPayroll = t
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return out, nil
}

// FormatCurrency renders an amount with grouping, e.g. $12,345.60.
func (s *Service) FormatCurrency(amount float64) string {
	return s.printer.Sprintf("$%.2f", amount)
}
