package service

import (
	"encoding/json"
	"fmt"
	"sync"
	"unicode/utf8"

	"loteamento/internal/metrics"
	"loteamento/internal/models"
	"loteamento/internal/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Actor identifies who triggered an operation and from where. A nil UserID
// means the system or an unauthenticated caller.
type Actor struct {
	UserID    *uint
	IP        string
	UserAgent string
}

// SystemActor is used for work nobody requested directly, like scheduled backups.
var SystemActor = Actor{}

func UserActor(id uint, ip, userAgent string) Actor {
	return Actor{UserID: &id, IP: ip, UserAgent: userAgent}
}

// Activity describes one mutation. Before and After are any JSON
// serialisable values; either may be nil.
type Activity struct {
	Action   string
	Table    string
	RecordID *uint
	Before   any
	After    any
}

// ActivityWriter persists activity records.
type ActivityWriter interface {
	Create(a *models.ActivityRecord) error
}

var _ ActivityWriter = (*repository.ActivityRepository)(nil)

// ActivityRecorder appends audit entries. Writes are best effort: a failure
// is logged and counted, never returned to the caller.
type ActivityRecorder struct {
	w   ActivityWriter
	log *zap.Logger

	mu        sync.RWMutex
	listeners []func(models.ActivityRecord)
	mutations []func(Activity)
}

func NewActivityRecorder(w ActivityWriter, log *zap.Logger) *ActivityRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &ActivityRecorder{w: w, log: log}
}

// OnRecord registers fn to run after every successfully stored record.
func (r *ActivityRecorder) OnRecord(fn func(models.ActivityRecord)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// OnMutation registers fn to run for every reported mutation, whether or
// not its audit entry could be stored.
func (r *ActivityRecorder) OnMutation(fn func(Activity)) {
	r.mu.Lock()
	r.mutations = append(r.mutations, fn)
	r.mu.Unlock()
}

// Record writes one entry and reports whether it was stored.
func (r *ActivityRecorder) Record(actor Actor, a Activity) bool {
	r.mu.RLock()
	mutations := append([]func(Activity){}, r.mutations...)
	r.mu.RUnlock()
	for _, fn := range mutations {
		fn(a)
	}

	rec := models.ActivityRecord{
		UserID:    actor.UserID,
		Action:    a.Action,
		Table:     a.Table,
		RecordID:  a.RecordID,
		Before:    r.snapshot(a, a.Before),
		After:     r.snapshot(a, a.After),
		IP:        actor.IP,
		UserAgent: truncate(actor.UserAgent, 512),
	}
	if err := r.safeCreate(&rec); err != nil {
		metrics.ActivityRecords.WithLabelValues(a.Action, "error").Inc()
		r.log.Warn("activity record failed",
			zap.String("action", a.Action),
			zap.String("table", a.Table),
			zap.Error(err))
		return false
	}
	metrics.ActivityRecords.WithLabelValues(a.Action, "ok").Inc()

	r.mu.RLock()
	listeners := append([]func(models.ActivityRecord){}, r.listeners...)
	r.mu.RUnlock()
	for _, fn := range listeners {
		fn(rec)
	}
	return true
}

func (r *ActivityRecorder) safeCreate(rec *models.ActivityRecord) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = panicError{p}
		}
	}()
	return r.w.Create(rec)
}

func (r *ActivityRecorder) snapshot(a Activity, v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		r.log.Warn("activity snapshot not serialisable",
			zap.String("action", a.Action), zap.Error(err))
		return nil
	}
	return datatypes.JSON(b)
}

type panicError struct{ v any }

func (p panicError) Error() string { return fmt.Sprintf("panic: %v", p.v) }

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func uintPtr(v uint) *uint { return &v }
