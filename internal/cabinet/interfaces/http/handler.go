// Package cabinethttp exposes cabinet state and slot operations under
// /api/v1/cabinet.
package cabinethttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"swapstation-cloud/internal/audit"
	"swapstation-cloud/internal/auth"
	"swapstation-cloud/internal/cabinet"
)

// CabinetClient is the cabinet API surface the handler needs.
type CabinetClient interface {
	StationState(ctx context.Context, cabinetID string) (cabinet.StationState, error)
	ListBatteries(ctx context.Context, cabinetID string) ([]cabinet.Battery, error)
	PopSlot(ctx context.Context, cabinetID string, slot int) (cabinet.PopResult, error)
}

// Handler serves cabinet endpoints.
type Handler struct {
	client      CabinetClient
	auditLogger audit.Logger
}

// NewHandler constructs a cabinet handler.
func NewHandler(client CabinetClient, auditLogger audit.Logger) (*Handler, error) {
	if client == nil {
		return nil, errors.New("cabinet handler: nil client")
	}
	return &Handler{client: client, auditLogger: auditLogger}, nil
}

// ServeHTTP routes cabinet requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/cabinet/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	cabinetID := parts[0]

	switch {
	case len(parts) == 2 && parts[1] == "state" && r.Method == http.MethodGet:
		state, err := h.client.StationState(r.Context(), cabinetID)
		if err != nil {
			respondClientError(w, err)
			return
		}
		writeJSON(w, state)

	case len(parts) == 2 && parts[1] == "batteries" && r.Method == http.MethodGet:
		batteries, err := h.client.ListBatteries(r.Context(), cabinetID)
		if err != nil {
			respondClientError(w, err)
			return
		}
		writeJSON(w, batteries)

	case len(parts) == 4 && parts[1] == "slots" && parts[3] == "pop" && r.Method == http.MethodPost:
		slot, err := strconv.Atoi(parts[2])
		if err != nil || slot <= 0 {
			http.Error(w, "invalid slot", http.StatusBadRequest)
			return
		}
		result, err := h.client.PopSlot(r.Context(), cabinetID, slot)
		if err != nil {
			respondClientError(w, err)
			return
		}
		writeJSON(w, result)
		h.logPop(r, cabinetID, slot)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func respondClientError(w http.ResponseWriter, err error) {
	if errors.Is(err, cabinet.ErrUnauthorized) {
		http.Error(w, "cabinet api rejected credentials", http.StatusBadGateway)
		return
	}
	http.Error(w, err.Error(), http.StatusBadGateway)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) logPop(r *http.Request, cabinetID string, slot int) {
	if h.auditLogger == nil {
		return
	}
	meta, _ := json.Marshal(map[string]any{"slot": slot})
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "cabinet.slot.pop",
		ResourceType: "cabinet",
		ResourceID:   cabinetID,
		Metadata:     meta,
		IP:           r.RemoteAddr,
		UserAgent:    r.UserAgent(),
	})
}
