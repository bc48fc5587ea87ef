// Package masterdatahttp exposes the station, user and scan CRUD
// surface under /api/v1.
package masterdatahttp

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"swapstation-cloud/internal/audit"
	"swapstation-cloud/internal/auth"
	masterdata "swapstation-cloud/internal/masterdata/domain"
	"swapstation-cloud/internal/observability/metrics"
)

// Handler serves masterdata endpoints.
type Handler struct {
	stations    masterdata.StationRepository
	users       masterdata.UserRepository
	scans       masterdata.ScanRepository
	auditLogger audit.Logger
}

// NewHandler constructs a masterdata handler.
func NewHandler(stations masterdata.StationRepository, users masterdata.UserRepository, scans masterdata.ScanRepository, auditLogger audit.Logger) (*Handler, error) {
	if stations == nil || users == nil || scans == nil {
		return nil, errors.New("masterdata handler: nil repository")
	}
	return &Handler{stations: stations, users: users, scans: scans, auditLogger: auditLogger}, nil
}

type stationDTO struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	StripeCustomerID string  `json:"stripe_customer_id"`
	UpdatedAt        string  `json:"updated_at,omitempty"`
}

type userDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"created_at,omitempty"`
}

type scanDTO struct {
	ID        string `json:"id,omitempty"`
	UserID    string `json:"user_id"`
	StationID string `json:"station_id"`
	ScannedAt string `json:"scanned_at,omitempty"`
}

// ServeHTTP routes masterdata requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch parts[0] {
	case "stations":
		h.serveStations(w, r, parts[1:])
	case "users":
		h.serveUsers(w, r, parts[1:])
	case "scans":
		h.serveScans(w, r, parts[1:])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) serveStations(w http.ResponseWriter, r *http.Request, rest []string) {
	switch {
	case len(rest) == 0 && r.Method == http.MethodGet:
		stations, err := h.stations.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out := make([]stationDTO, 0, len(stations))
		for _, station := range stations {
			out = append(out, toStationDTO(station))
		}
		writeJSON(w, out)

	case len(rest) == 0 && r.Method == http.MethodPost:
		var req stationDTO
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		station := masterdata.Station{
			ID:               req.ID,
			Title:            req.Title,
			Latitude:         req.Latitude,
			Longitude:        req.Longitude,
			StripeCustomerID: req.StripeCustomerID,
		}
		if err := h.stations.Save(r.Context(), &station); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeCreated(w, toStationDTO(station))
		h.logAudit(r, "station.save", "station", station.ID)

	case len(rest) == 1 && r.Method == http.MethodGet:
		station, err := h.stations.Get(r.Context(), rest[0])
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if station == nil {
			http.Error(w, "station not found", http.StatusNotFound)
			return
		}
		writeJSON(w, toStationDTO(*station))

	case len(rest) == 1 && r.Method == http.MethodPut:
		var req stationDTO
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		station := masterdata.Station{
			ID:               rest[0],
			Title:            req.Title,
			Latitude:         req.Latitude,
			Longitude:        req.Longitude,
			StripeCustomerID: req.StripeCustomerID,
		}
		if err := h.stations.Save(r.Context(), &station); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, toStationDTO(station))
		h.logAudit(r, "station.save", "station", station.ID)

	case len(rest) == 1 && r.Method == http.MethodDelete:
		if err := h.stations.Delete(r.Context(), rest[0]); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		h.logAudit(r, "station.delete", "station", rest[0])

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) serveUsers(w http.ResponseWriter, r *http.Request, rest []string) {
	switch {
	case len(rest) == 0 && r.Method == http.MethodGet:
		users, err := h.users.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out := make([]userDTO, 0, len(users))
		for _, user := range users {
			out = append(out, toUserDTO(user))
		}
		writeJSON(w, out)

	case len(rest) == 0 && r.Method == http.MethodPost:
		var req userDTO
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		user := masterdata.User{ID: req.ID, Name: req.Name, Phone: req.Phone}
		if err := h.users.Save(r.Context(), &user); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeCreated(w, toUserDTO(user))
		h.logAudit(r, "user.save", "user", user.ID)

	case len(rest) == 1 && r.Method == http.MethodGet:
		user, err := h.users.Get(r.Context(), rest[0])
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if user == nil {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		writeJSON(w, toUserDTO(*user))

	case len(rest) == 1 && r.Method == http.MethodDelete:
		if err := h.users.Delete(r.Context(), rest[0]); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		h.logAudit(r, "user.delete", "user", rest[0])

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) serveScans(w http.ResponseWriter, r *http.Request, rest []string) {
	switch {
	case len(rest) == 0 && r.Method == http.MethodPost:
		var req scanDTO
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		scan := masterdata.Scan{UserID: req.UserID, StationID: req.StationID}
		if err := h.scans.Record(r.Context(), &scan); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		metrics.IncScanRecord()
		writeCreated(w, toScanDTO(scan))

	case len(rest) == 0 && r.Method == http.MethodGet:
		stationID := r.URL.Query().Get("station_id")
		if stationID == "" {
			http.Error(w, "station_id required", http.StatusBadRequest)
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		scans, err := h.scans.ListByStation(r.Context(), stationID, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out := make([]scanDTO, 0, len(scans))
		for _, scan := range scans {
			out = append(out, toScanDTO(scan))
		}
		writeJSON(w, out)

	case len(rest) == 1 && rest[0] == "export" && r.Method == http.MethodGet:
		h.serveScanExport(w, r)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// serveScanExport streams scans since a date as CSV.
func (h *Handler) serveScanExport(w http.ResponseWriter, r *http.Request) {
	since := time.Time{}
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "invalid since date", http.StatusBadRequest)
			return
		}
		since = parsed
	}
	scans, err := h.scans.ListSince(r.Context(), since)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="scans.csv"`)
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"id", "user_id", "station_id", "scanned_at"})
	for _, scan := range scans {
		_ = writer.Write([]string{scan.ID, scan.UserID, scan.StationID, scan.ScannedAt.Format(time.RFC3339)})
	}
	writer.Flush()
	h.logAudit(r, "scan.export", "scan", "")
}

func toStationDTO(station masterdata.Station) stationDTO {
	dto := stationDTO{
		ID:               station.ID,
		Title:            station.Title,
		Latitude:         station.Latitude,
		Longitude:        station.Longitude,
		StripeCustomerID: station.StripeCustomerID,
	}
	if !station.UpdatedAt.IsZero() {
		dto.UpdatedAt = station.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

func toUserDTO(user masterdata.User) userDTO {
	dto := userDTO{ID: user.ID, Name: user.Name, Phone: user.Phone}
	if !user.CreatedAt.IsZero() {
		dto.CreatedAt = user.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toScanDTO(scan masterdata.Scan) scanDTO {
	dto := scanDTO{ID: scan.ID, UserID: scan.UserID, StationID: scan.StationID}
	if !scan.ScannedAt.IsZero() {
		dto.ScannedAt = scan.ScannedAt.Format(time.RFC3339)
	}
	return dto
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeCreated(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) logAudit(r *http.Request, action, resourceType, resourceID string) {
	if h.auditLogger == nil {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IP:           r.RemoteAddr,
		UserAgent:    r.UserAgent(),
	})
}
