package models

import "time"

// SystemMetrics is a lightweight aggregate snapshot for the admin surface;
// the full series lives behind the Prometheus endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	CheckInsAccepted         uint64    `json:"check_ins_accepted"`
	CheckInsRejected         uint64    `json:"check_ins_rejected"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
