package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jcondori/biblioteca-api/internal/models"
	appErrors "github.com/jcondori/biblioteca-api/pkg/errors"
)

const dashboardCacheKey = "dash:stats"

type dashboardAssetRepository interface {
	CountByKind(ctx context.Context, kind models.AssetKind) (int, error)
	CountByCondition(ctx context.Context, kind models.AssetKind) ([]models.ConditionCount, error)
	Recent(ctx context.Context, kind models.AssetKind, limit int) ([]models.AssetSummary, error)
}

type dashboardLoanRepository interface {
	CountActive(ctx context.Context) (int, error)
}

// DashboardService composes the control panel stats, cached behind Redis.
type DashboardService struct {
	assets   dashboardAssetRepository
	loans    dashboardLoanRepository
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(assets dashboardAssetRepository, loans dashboardLoanRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cacheTTL time.Duration) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{assets: assets, loans: loans, cache: cache, metrics: metrics, logger: logger, cacheTTL: cacheTTL}
}

// Stats returns the dashboard payload and whether it was served from cache.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, bool, error) {
	if s.cache != nil {
		var cached models.DashboardStats
		hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}

	stats, err := s.compose(ctx)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardCacheKey, stats, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return stats, false, nil
}

// Invalidate drops the cached payload; called after catalog or loan writes.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCacheKey); err != nil {
		s.logger.Warn("dashboard cache invalidate failed", zap.Error(err))
	}
}

// observed times one repository query for the db duration histogram.
func (s *DashboardService) observed(label string) func() {
	start := time.Now()
	return func() { s.metrics.ObserveDBQuery(label, time.Since(start)) }
}

func (s *DashboardService) compose(ctx context.Context) (*models.DashboardStats, error) {
	done := s.observed("dashboard_count_libros")
	totalLibros, err := s.assets.CountByKind(ctx, models.AssetKindBook)
	done()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count books")
	}
	done = s.observed("dashboard_count_tesis")
	totalTesis, err := s.assets.CountByKind(ctx, models.AssetKindThesis)
	done()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count theses")
	}
	done = s.observed("dashboard_count_vigentes")
	active, err := s.loans.CountActive(ctx)
	done()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count active loans")
	}

	done = s.observed("dashboard_count_by_condition")
	byCondition, err := s.assets.CountByCondition(ctx, models.AssetKindBook)
	done()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate conditions")
	}
	conditions := map[string]int{
		string(models.ConditionGood):        0,
		string(models.ConditionFair):        0,
		string(models.ConditionPoor):        0,
		string(models.ConditionUnderRepair): 0,
	}
	for _, row := range byCondition {
		conditions[row.Estado] = row.Cantidad
	}

	done = s.observed("dashboard_recent_libros")
	recentBooks, err := s.assets.Recent(ctx, models.AssetKindBook, 5)
	done()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent books")
	}
	done = s.observed("dashboard_recent_tesis")
	recentTheses, err := s.assets.Recent(ctx, models.AssetKindThesis, 5)
	done()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent theses")
	}

	return &models.DashboardStats{
		TotalLibros:       totalLibros,
		TotalTesis:        totalTesis,
		PrestamosVigentes: active,
		LibrosPorEstado:   conditions,
		UltimosAgregados: models.RecentAdditions{
			Libros: recentBooks,
			Tesis:  recentTheses,
		},
	}, nil
}
