// Package mission ведёт журнал заданий: одна активная миссия и список завершённых.
package mission

import (
	"time"

	"github.com/annel0/echoes-hidden/internal/events"
)

// Status задаёт статус миссии
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
)

// Mission описывает задание, выданное NPC
type Mission struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// State содержит сериализуемое состояние журнала
type State struct {
	Active    *Mission  `json:"active"`
	Completed []Mission `json:"completed"`
}

// Log ведёт журнал миссий. Не потокобезопасен.
type Log struct {
	active    *Mission
	completed []Mission

	emitter events.Emitter
	now     func() time.Time
}

// Option настраивает журнал
type Option func(*Log)

// WithClock подменяет источник времени
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// NewLog создаёт пустой журнал
func NewLog(emitter events.Emitter, opts ...Option) *Log {
	l := &Log{
		emitter: emitter,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Active возвращает копию активной миссии
func (l *Log) Active() (Mission, bool) {
	if l.active == nil {
		return Mission{}, false
	}
	return *l.active, true
}

// Completed возвращает копию списка завершённых миссий
func (l *Log) Completed() []Mission {
	out := make([]Mission, len(l.completed))
	copy(out, l.completed)
	return out
}

// Activate делает миссию активной, заменяя текущую
func (l *Log) Activate(m Mission) {
	m.Status = StatusActive
	m.CompletedAt = nil
	l.active = &m

	events.Emit(l.emitter, events.Event{
		Type:    events.MissionActivated,
		Payload: map[string]any{"id": m.ID, "title": m.Title},
	})
}

// Complete переносит активную миссию в завершённые.
// Без активной миссии ничего не делает и возвращает false.
func (l *Log) Complete() (Mission, bool) {
	if l.active == nil {
		return Mission{}, false
	}

	done := *l.active
	at := l.now().UTC()
	done.Status = StatusCompleted
	done.CompletedAt = &at

	l.completed = append(l.completed, done)
	l.active = nil

	events.Emit(l.emitter, events.Event{
		Type:    events.MissionCompleted,
		Payload: map[string]any{"id": done.ID},
	})
	return done, true
}

// State возвращает снимок журнала
func (l *Log) State() State {
	s := State{Completed: l.Completed()}
	if m, ok := l.Active(); ok {
		s.Active = &m
	}
	return s
}

// Restore применяет сохранённое состояние без публикации событий
func (l *Log) Restore(s State) {
	l.active = nil
	if s.Active != nil {
		m := *s.Active
		l.active = &m
	}
	l.completed = append([]Mission(nil), s.Completed...)
}

// Reset очищает активную и завершённые миссии
func (l *Log) Reset() {
	l.active = nil
	l.completed = nil
}
