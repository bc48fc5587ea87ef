package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "swapstation_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	reportRequests *prometheus.CounterVec
	reportLatency  *prometheus.HistogramVec

	ledgerPages   *prometheus.CounterVec
	ledgerLatency *prometheus.HistogramVec

	cabinetCalls   *prometheus.CounterVec
	cabinetLatency *prometheus.HistogramVec
	tokenRefreshes *prometheus.CounterVec

	alertsSent *prometheus.CounterVec

	scanWrites prometheus.Counter
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		reportRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_requests_total",
				Help: "Total revenue report requests by window mode and result",
			},
			[]string{"mode", "result"},
		)
		reportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_latency_seconds",
				Help:    "Revenue report latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode", "result"},
		)

		ledgerPages = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ledger_pages_total",
				Help: "Total ledger pages fetched by endpoint and result",
			},
			[]string{"endpoint", "result"},
		)
		ledgerLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ledger_fetch_latency_seconds",
				Help:    "Ledger page fetch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "result"},
		)

		cabinetCalls = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cabinet_calls_total",
				Help: "Total cabinet API calls by operation and result",
			},
			[]string{"operation", "result"},
		)
		cabinetLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "cabinet_call_latency_seconds",
				Help:    "Cabinet API call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "result"},
		)
		tokenRefreshes = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cabinet_token_refreshes_total",
				Help: "Total cabinet token refreshes by result",
			},
			[]string{"result"},
		)

		alertsSent = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alerts_sent_total",
				Help: "Total station status alerts by kind and result",
			},
			[]string{"kind", "result"},
		)

		scanWrites = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "scan_records_total",
				Help: "Total persisted scan records",
			},
		)

		prometheus.MustRegister(
			reportRequests,
			reportLatency,
			ledgerPages,
			ledgerLatency,
			cabinetCalls,
			cabinetLatency,
			tokenRefreshes,
			alertsSent,
			scanWrites,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveReportRequest records report request duration and result.
func ObserveReportRequest(mode, result string, duration time.Duration) {
	if mode == "" {
		mode = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportRequests != nil {
		reportRequests.WithLabelValues(mode, result).Inc()
	}
	if reportLatency != nil {
		reportLatency.WithLabelValues(mode, result).Observe(duration.Seconds())
	}
}

// ObserveLedgerPage records one ledger page fetch.
func ObserveLedgerPage(endpoint, result string, duration time.Duration) {
	if endpoint == "" {
		endpoint = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if ledgerPages != nil {
		ledgerPages.WithLabelValues(endpoint, result).Inc()
	}
	if ledgerLatency != nil {
		ledgerLatency.WithLabelValues(endpoint, result).Observe(duration.Seconds())
	}
}

// ObserveCabinetCall records one cabinet API call.
func ObserveCabinetCall(operation, result string, duration time.Duration) {
	if operation == "" {
		operation = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if cabinetCalls != nil {
		cabinetCalls.WithLabelValues(operation, result).Inc()
	}
	if cabinetLatency != nil {
		cabinetLatency.WithLabelValues(operation, result).Observe(duration.Seconds())
	}
}

// IncTokenRefresh increments the cabinet token refresh counter.
func IncTokenRefresh(result string) {
	if result == "" {
		result = resultSuccess
	}
	if tokenRefreshes != nil {
		tokenRefreshes.WithLabelValues(result).Inc()
	}
}

// IncAlertSent increments the alert counter.
func IncAlertSent(kind, result string) {
	if kind == "" {
		kind = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if alertsSent != nil {
		alertsSent.WithLabelValues(kind, result).Inc()
	}
}

// IncScanRecord increments the persisted scan counter.
func IncScanRecord() {
	if scanWrites != nil {
		scanWrites.Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
