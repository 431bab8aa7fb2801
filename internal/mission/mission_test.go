package mission

import (
	"testing"
	"time"

	"github.com/annel0/echoes-hidden/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestLog_ActivateAndComplete(t *testing.T) {
	var rec events.Recorder
	l := NewLog(&rec, WithClock(fixedClock))

	l.Activate(Mission{ID: "mission_1", Title: "Retrieve Data Drive"})
	active, ok := l.Active()
	require.True(t, ok)
	assert.Equal(t, StatusActive, active.Status)

	done, ok := l.Complete()
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, fixedClock(), *done.CompletedAt)

	_, ok = l.Active()
	assert.False(t, ok, "После завершения активной миссии нет")
	assert.Len(t, l.Completed(), 1)

	assert.Equal(t, 1, rec.Count(events.MissionActivated))
	assert.Equal(t, 1, rec.Count(events.MissionCompleted))
}

func TestLog_CompleteWithoutActive(t *testing.T) {
	var rec events.Recorder
	l := NewLog(&rec)

	_, ok := l.Complete()
	assert.False(t, ok)
	assert.Empty(t, l.Completed())
	assert.Empty(t, rec.Events(), "Без активной миссии событие не публикуется")
}

func TestLog_ActivateReplaces(t *testing.T) {
	l := NewLog(nil)
	l.Activate(Mission{ID: "a"})
	l.Activate(Mission{ID: "b"})

	active, ok := l.Active()
	require.True(t, ok)
	assert.Equal(t, "b", active.ID)
	assert.Empty(t, l.Completed(), "Заменённая миссия не считается завершённой")
}

func TestLog_StateRestoreReset(t *testing.T) {
	l := NewLog(nil, WithClock(fixedClock))
	l.Activate(Mission{ID: "a"})
	l.Complete()
	l.Activate(Mission{ID: "b"})

	state := l.State()
	require.NotNil(t, state.Active)
	assert.Equal(t, "b", state.Active.ID)
	assert.Len(t, state.Completed, 1)

	var rec events.Recorder
	other := NewLog(&rec)
	other.Restore(state)
	assert.Equal(t, state, other.State())
	assert.Empty(t, rec.Events(), "Восстановление не публикует событий")

	other.Reset()
	_, ok := other.Active()
	assert.False(t, ok)
	assert.Empty(t, other.Completed())
}
