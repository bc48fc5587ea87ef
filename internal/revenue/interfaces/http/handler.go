// Package revenuehttp exposes the /rents report surface.
package revenuehttp

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"swapstation-cloud/internal/observability/metrics"
	"swapstation-cloud/internal/revenue/application"
	revenue "swapstation-cloud/internal/revenue/domain"
)

// Handler serves the /rents/* report routes.
type Handler struct {
	service *application.ReportService
	logger  *log.Logger
}

// NewHandler constructs a revenue report handler.
func NewHandler(service *application.ReportService, logger *log.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("revenuehttp: nil report service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{service: service, logger: logger}, nil
}

// ServeHTTP routes GET /rents/{mtd,mtd/{ids},range,from,recent,export}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/rents/")
	start := time.Now()
	mode, err := h.dispatch(w, r, path)
	result := "success"
	if err != nil {
		result = "error"
		h.writeError(w, err)
	}
	metrics.ObserveReportRequest(mode, result, time.Since(start))
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, path string) (string, error) {
	switch {
	case path == "mtd":
		report, err := h.service.MonthToDate(r.Context())
		if err != nil {
			return "mtd", err
		}
		writeSuccess(w, report, map[string]any{"mtd": report.Label})
		return "mtd", nil

	case strings.HasPrefix(path, "mtd/"):
		ids := splitStationIDs(strings.TrimPrefix(path, "mtd/"))
		if len(ids) == 0 {
			return "mtd_station", revenue.ErrStationNotFound
		}
		report, err := h.service.StationMonthToDate(r.Context(), ids)
		if err != nil {
			return "mtd_station", err
		}
		writeSuccess(w, report, map[string]any{"mtd": report.Label, "station_ids": ids})
		return "mtd_station", nil

	case path == "range":
		from := r.URL.Query().Get("from")
		to := r.URL.Query().Get("to")
		if from == "" || to == "" {
			return "range", revenue.ErrInvalidRange
		}
		report, err := h.service.Range(r.Context(), from, to)
		if err != nil {
			return "range", err
		}
		writeSuccess(w, report, map[string]any{"range": report.Label})
		return "range", nil

	case path == "from":
		from := r.URL.Query().Get("from")
		if from == "" {
			return "from", revenue.ErrInvalidRange
		}
		report, err := h.service.FromDate(r.Context(), from)
		if err != nil {
			return "from", err
		}
		writeSuccess(w, report, map[string]any{"range": report.Label})
		return "from", nil

	case path == "recent":
		report, err := h.service.Recent(r.Context(), parseLimit(r.URL.Query().Get("limit")))
		if err != nil {
			return "recent", err
		}
		writeSuccess(w, report, nil)
		return "recent", nil

	case path == "export":
		return "export", h.serveExport(w, r)

	default:
		http.NotFound(w, r)
		return "unknown", nil
	}
}

// parseLimit clamps the recent-mode limit: non-numeric falls back to
// the default, oversized clamps to the maximum.
func parseLimit(raw string) int {
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}

func splitStationIDs(raw string) []string {
	parts := strings.Split(raw, ".")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

func writeSuccess(w http.ResponseWriter, report application.Report, extra map[string]any) {
	payload := map[string]any{
		"success":  true,
		"positive": report.Positive,
		"negative": report.Negative,
		"days":     report.Days,
	}
	if report.PPositive != nil {
		payload["ppositive"] = *report.PPositive
	}
	if report.PNegative != nil {
		payload["pnegative"] = *report.PNegative
	}
	for key, value := range extra {
		payload[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, revenue.ErrInvalidRange), errors.Is(err, revenue.ErrInvalidStation):
		status = http.StatusBadRequest
	case errors.Is(err, revenue.ErrStationNotFound):
		status = http.StatusNotFound
	case errors.Is(err, revenue.ErrConfigurationMissing):
		status = http.StatusServiceUnavailable
	default:
		var upstream interface{ UpstreamStatus() int }
		if errors.As(err, &upstream) {
			status = upstream.UpstreamStatus()
			if status == 0 {
				status = http.StatusBadGateway
			}
		}
	}
	if status >= http.StatusInternalServerError {
		h.logger.Printf("rents request failed: %v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": err.Error()})
}
