package notify

import (
	"encoding/json"

	applog "fixbay/internal/log"
	"fixbay/internal/repos"
)

// Dispatcher persists notifications to the recipient's inbox. Delivery is
// best-effort: a failed insert is logged and dropped, never returned, so the
// mutation that raised the notification stands regardless.
type Dispatcher struct {
	Repo *repos.NotificationRepo
}

func NewDispatcher(repo *repos.NotificationRepo) *Dispatcher {
	return &Dispatcher{Repo: repo}
}

func (d *Dispatcher) Notify(userID, kind, title, message, referenceID string, payload map[string]any) {
	var payloadJSON string
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			applog.Error(nil, "notify.payload", err, map[string]any{"user_id": userID, "kind": kind})
		} else {
			payloadJSON = string(b)
		}
	}
	if err := d.Repo.Insert(userID, kind, title, message, referenceID, payloadJSON); err != nil {
		applog.Error(nil, "notify.insert", err, map[string]any{"user_id": userID, "kind": kind})
	}
}
