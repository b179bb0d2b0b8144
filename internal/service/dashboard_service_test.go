package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jcondori/biblioteca-api/internal/models"
)

type mockDashboardAssets struct {
	byKind    map[models.AssetKind]int
	condition []models.ConditionCount
	recent    map[models.AssetKind][]models.AssetSummary
	calls     int
}

func (m *mockDashboardAssets) CountByKind(ctx context.Context, kind models.AssetKind) (int, error) {
	m.calls++
	return m.byKind[kind], nil
}

func (m *mockDashboardAssets) CountByCondition(ctx context.Context, kind models.AssetKind) ([]models.ConditionCount, error) {
	return m.condition, nil
}

func (m *mockDashboardAssets) Recent(ctx context.Context, kind models.AssetKind, limit int) ([]models.AssetSummary, error) {
	return m.recent[kind], nil
}

type mockDashboardLoans struct {
	active int
}

func (m *mockDashboardLoans) CountActive(ctx context.Context) (int, error) {
	return m.active, nil
}

func TestDashboardStats(t *testing.T) {
	assets := &mockDashboardAssets{
		byKind:    map[models.AssetKind]int{models.AssetKindBook: 120, models.AssetKindThesis: 35},
		condition: []models.ConditionCount{{Estado: "BUENO", Cantidad: 100}, {Estado: "MALO", Cantidad: 20}},
		recent: map[models.AssetKind][]models.AssetSummary{
			models.AssetKindBook: {{ID: "a1", Titulo: "Algoritmos"}},
		},
	}
	loans := &mockDashboardLoans{active: 7}
	svc := NewDashboardService(assets, loans, nil, nil, zap.NewNop(), time.Minute)

	stats, cached, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 120, stats.TotalLibros)
	assert.Equal(t, 35, stats.TotalTesis)
	assert.Equal(t, 7, stats.PrestamosVigentes)
	require.Len(t, stats.UltimosAgregados.Libros, 1)
	assert.Empty(t, stats.UltimosAgregados.Tesis)
}

func TestDashboardStatsZeroesMissingConditions(t *testing.T) {
	assets := &mockDashboardAssets{
		byKind:    map[models.AssetKind]int{},
		condition: []models.ConditionCount{{Estado: "BUENO", Cantidad: 3}},
	}
	svc := NewDashboardService(assets, &mockDashboardLoans{}, nil, nil, zap.NewNop(), time.Minute)

	stats, _, err := svc.Stats(context.Background())
	require.NoError(t, err)

	// Every known condition appears, even with zero assets.
	assert.Equal(t, 3, stats.LibrosPorEstado["BUENO"])
	assert.Equal(t, 0, stats.LibrosPorEstado["REGULAR"])
	assert.Equal(t, 0, stats.LibrosPorEstado["MALO"])
	assert.Equal(t, 0, stats.LibrosPorEstado["EN REPARACION"])
}

func TestDashboardStatsObservesQueryTimings(t *testing.T) {
	assets := &mockDashboardAssets{byKind: map[models.AssetKind]int{}}
	metrics := NewMetricsService()
	svc := NewDashboardService(assets, &mockDashboardLoans{}, nil, metrics, zap.NewNop(), time.Minute)

	_, _, err := svc.Stats(context.Background())
	require.NoError(t, err)

	// Two kind counts, the active-loan count, the condition aggregate and
	// two recent lists.
	snap := metrics.Snapshot()
	assert.Equal(t, uint64(6), snap.DBQueryCount)
}

func TestDashboardWorksWithoutCache(t *testing.T) {
	assets := &mockDashboardAssets{byKind: map[models.AssetKind]int{}}
	svc := NewDashboardService(assets, &mockDashboardLoans{}, nil, nil, zap.NewNop(), time.Minute)

	_, _, err := svc.Stats(context.Background())
	require.NoError(t, err)
	svc.Invalidate(context.Background())
}
