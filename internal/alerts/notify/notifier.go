package notify

import "context"

// AlertMessage represents a station status notification.
type AlertMessage struct {
	Kind      string `json:"kind"`
	StationID string `json:"station_id"`
	Title     string `json:"title"`
	Detail    string `json:"detail"`
}

const (
	KindOffline    = "offline"
	KindOnline     = "online"
	KindLowBattery = "low_battery"
)

// Notifier sends notifications.
type Notifier interface {
	Notify(ctx context.Context, msg AlertMessage) error
}
