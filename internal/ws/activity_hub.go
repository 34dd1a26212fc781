package ws

import (
	"sync"

	"loteamento/internal/domain"
	"loteamento/internal/models"
)

const recentActivities = 20

// ActivityEvent is the message pushed to admin dashboards.
type ActivityEvent struct {
	Type     string                  `json:"type"`
	Activity *models.ActivityRecord  `json:"atividade,omitempty"`
	Recent   []models.ActivityRecord `json:"atividades,omitempty"`
}

// ActivityHub streams stored activity records to connected admins and
// keeps the latest few for the initial load.
type ActivityHub struct {
	*Hub
	mu     sync.RWMutex
	recent []models.ActivityRecord
}

func NewActivityHub() *ActivityHub {
	return &ActivityHub{Hub: NewHub()}
}

// Publish is registered as an activity listener. A system reset empties
// the buffer since the records it held no longer exist.
func (a *ActivityHub) Publish(rec models.ActivityRecord) {
	a.mu.Lock()
	if rec.Action == domain.ActionSystemReset {
		a.recent = a.recent[:0]
	}
	a.recent = append(a.recent, rec)
	if len(a.recent) > recentActivities {
		a.recent = a.recent[len(a.recent)-recentActivities:]
	}
	a.mu.Unlock()
	a.BroadcastAll(ActivityEvent{Type: "activity", Activity: &rec})
}

// Recent returns the buffered records, newest first.
func (a *ActivityHub) Recent() []models.ActivityRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]models.ActivityRecord, len(a.recent))
	for i, r := range a.recent {
		out[len(a.recent)-1-i] = r
	}
	return out
}
