package models

import "time"

// DashboardStats is the aggregate payload behind the control panel.
type DashboardStats struct {
	TotalLibros       int              `json:"total_libros"`
	TotalTesis        int              `json:"total_tesis"`
	PrestamosVigentes int              `json:"prestamos_vigentes"`
	LibrosPorEstado   map[string]int   `json:"libros_por_estado"`
	UltimosAgregados  RecentAdditions  `json:"ultimos_agregados"`
}

// RecentAdditions lists the five most recent entries per kind.
type RecentAdditions struct {
	Libros []AssetSummary `json:"libros"`
	Tesis  []AssetSummary `json:"tesis"`
}

// ConditionCount is a scan target for the by-condition aggregation.
type ConditionCount struct {
	Estado   string `db:"estado"`
	Cantidad int    `db:"cantidad"`
}

// SystemMetrics is a lightweight snapshot of runtime counters, exposed to
// operators next to the Prometheus endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"avg_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"avg_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
