// Package alerts watches station cabinet status and pushes transition
// alerts to a chat-bot webhook.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"swapstation-cloud/internal/alerts/notify"
	"swapstation-cloud/internal/cabinet"
	masterdata "swapstation-cloud/internal/masterdata/domain"
	"swapstation-cloud/internal/observability/metrics"
)

// StationLister enumerates stations to watch.
type StationLister interface {
	List(ctx context.Context) ([]masterdata.Station, error)
}

// CabinetStates reads cabinet status snapshots.
type CabinetStates interface {
	StationState(ctx context.Context, cabinetID string) (cabinet.StationState, error)
}

// StatusMonitor polls every station's cabinet and raises one alert per
// status transition. Alerts are edge-triggered: a station that stays
// offline produces a single offline alert until it recovers.
type StatusMonitor struct {
	stations      StationLister
	cabinets      CabinetStates
	notifier      notify.Notifier
	logger        *log.Logger
	interval      time.Duration
	lowBatteryPct int

	mu   sync.Mutex
	seen map[string]stationStatus
}

type stationStatus struct {
	online bool
	low    bool
}

// NewStatusMonitor constructs a monitor.
func NewStatusMonitor(stations StationLister, cabinets CabinetStates, notifier notify.Notifier, logger *log.Logger, opts ...MonitorOption) (*StatusMonitor, error) {
	if stations == nil || cabinets == nil || notifier == nil {
		return nil, errors.New("alerts: nil dependency")
	}
	if logger == nil {
		logger = log.Default()
	}
	m := &StatusMonitor{
		stations:      stations,
		cabinets:      cabinets,
		notifier:      notifier,
		logger:        logger,
		interval:      time.Minute,
		lowBatteryPct: 20,
		seen:          make(map[string]stationStatus),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// MonitorOption configures the monitor.
type MonitorOption func(*StatusMonitor)

// WithPollInterval overrides the poll interval.
func WithPollInterval(interval time.Duration) MonitorOption {
	return func(m *StatusMonitor) {
		if interval > 0 {
			m.interval = interval
		}
	}
}

// WithLowBatteryPct overrides the low-battery threshold.
func WithLowBatteryPct(pct int) MonitorOption {
	return func(m *StatusMonitor) {
		if pct > 0 && pct <= 100 {
			m.lowBatteryPct = pct
		}
	}
}

// Run polls until the context is cancelled.
func (m *StatusMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Poll(ctx)
		}
	}
}

// Poll checks every station once and emits transition alerts.
func (m *StatusMonitor) Poll(ctx context.Context) {
	stations, err := m.stations.List(ctx)
	if err != nil {
		m.logger.Printf("alerts: list stations: %v", err)
		return
	}
	for _, station := range stations {
		m.checkStation(ctx, station)
	}
}

func (m *StatusMonitor) checkStation(ctx context.Context, station masterdata.Station) {
	state, err := m.cabinets.StationState(ctx, station.ID)
	current := stationStatus{}
	if err == nil {
		current.online = state.Online
		current.low = state.Online && !m.hasSwappableBattery(state)
	}
	// An unreachable cabinet counts as offline.

	m.mu.Lock()
	previous, known := m.seen[station.ID]
	m.seen[station.ID] = current
	m.mu.Unlock()

	if !known {
		previous = stationStatus{online: true}
	}

	switch {
	case previous.online && !current.online:
		m.send(ctx, notify.AlertMessage{
			Kind:      notify.KindOffline,
			StationID: station.ID,
			Title:     station.Title + " is offline",
			Detail:    detailForError(err),
		})
	case !previous.online && current.online:
		m.send(ctx, notify.AlertMessage{
			Kind:      notify.KindOnline,
			StationID: station.ID,
			Title:     station.Title + " is back online",
		})
	}

	if current.online && current.low && !previous.low {
		m.send(ctx, notify.AlertMessage{
			Kind:      notify.KindLowBattery,
			StationID: station.ID,
			Title:     station.Title + " has no swappable battery",
			Detail:    fmt.Sprintf("no battery at or above %d%%", m.lowBatteryPct),
		})
	}
}

func (m *StatusMonitor) hasSwappableBattery(state cabinet.StationState) bool {
	for _, battery := range state.Batteries {
		if battery.ChargePct >= m.lowBatteryPct {
			return true
		}
	}
	return false
}

func (m *StatusMonitor) send(ctx context.Context, msg notify.AlertMessage) {
	err := m.notifier.Notify(ctx, msg)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
		m.logger.Printf("alerts: notify %s for %s: %v", msg.Kind, msg.StationID, err)
	}
	metrics.IncAlertSent(msg.Kind, result)
}

func detailForError(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
