package meta

import (
	"math"
	"testing"

	"github.com/annel0/echoes-hidden/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySuspicionDelta(t *testing.T) {
	cases := []struct {
		name           string
		current, delta float64
		want           float64
	}{
		{"рост", 10, 1, 11},
		{"спад", 10, -0.1, 9.9},
		{"нижняя граница", 0.05, -0.1, 0},
		{"верхняя граница", 99.5, 1, 100},
		{"NaN", 42, math.NaN(), 42},
		{"бесконечность", 42, math.Inf(1), 42},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.InDelta(t, c.want, ApplySuspicionDelta(c.current, c.delta), 1e-9)
		})
	}
}

func TestAggregator_MaxEventFiresOnce(t *testing.T) {
	var rec events.Recorder
	a := NewAggregator(&rec)

	a.SetSuspicion(99)
	assert.False(t, a.GameOver())

	maxed := a.ApplyTickDelta(1)
	assert.True(t, maxed)
	assert.Equal(t, MaxSuspicion, a.Suspicion())
	assert.True(t, a.GameOver(), "Максимум подозрительности оканчивает игру")

	for i := 0; i < 10; i++ {
		assert.False(t, a.ApplyTickDelta(1), "Повторное достижение максимума не считается переходом")
	}

	assert.Equal(t, 1, rec.Count(events.SuspicionMaxed), "Событие максимума публикуется ровно один раз")
	assert.Equal(t, 1, rec.Count(events.GameOver))
}

func TestAggregator_SetSuspicionIdempotentAtMax(t *testing.T) {
	var rec events.Recorder
	a := NewAggregator(&rec)

	a.SetSuspicion(100)
	require.Equal(t, 1, rec.Count(events.SuspicionMaxed))

	a.SetSuspicion(150)
	assert.Equal(t, MaxSuspicion, a.Suspicion())
	assert.True(t, a.GameOver())
	assert.Equal(t, 1, rec.Count(events.SuspicionMaxed), "Установка 150 при 100 не даёт нового события")
}

func TestAggregator_MaxAgainAfterDrop(t *testing.T) {
	var rec events.Recorder
	a := NewAggregator(&rec)

	a.SetSuspicion(100)
	a.SetSuspicion(80)
	a.SetGameOver(false, CauseManual)
	a.SetSuspicion(100)

	assert.Equal(t, 2, rec.Count(events.SuspicionMaxed), "После спада новый выход на максимум снова публикует событие")
	assert.Equal(t, 2, rec.Count(events.GameOver))
}

func TestAggregator_SetSuspicionClamps(t *testing.T) {
	a := NewAggregator(nil)

	a.SetSuspicion(-5)
	assert.Zero(t, a.Suspicion())

	a.SetSuspicion(30)
	a.SetSuspicion(math.NaN())
	assert.Equal(t, 30.0, a.Suspicion(), "NaN не меняет подозрительность")
}

func TestAggregator_Reputation(t *testing.T) {
	var rec events.Recorder
	a := NewAggregator(&rec)
	require.Equal(t, DefaultReputation, a.Reputation())

	assert.Equal(t, 60.0, a.UpdateReputation(10))
	assert.Equal(t, 100.0, a.UpdateReputation(1000), "Репутация не превышает 100")
	assert.Equal(t, 0.0, a.UpdateReputation(-1000), "Репутация не опускается ниже 0")

	rec.Reset()
	a.UpdateReputation(-5)
	a.UpdateReputation(math.NaN())
	assert.Zero(t, rec.Count(events.ReputationChanged), "Без фактического изменения событие не публикуется")
}

func TestAggregator_GameOverLatchedBeforeMaxEvent(t *testing.T) {
	d := events.NewDispatcher()
	a := NewAggregator(d)

	var seen []bool
	d.Subscribe(func(events.Event) {
		seen = append(seen, a.GameOver())
	})

	a.SetSuspicion(99)
	require.Empty(t, seen)

	a.ApplyTickDelta(5)
	require.Len(t, seen, 2, "Публикуются максимум и окончание игры")
	assert.Equal(t, []bool{true, true}, seen, "Слушатель видит окончание игры уже при событии максимума")
}

func TestAggregator_GameOverCause(t *testing.T) {
	var rec events.Recorder
	a := NewAggregator(&rec)

	a.SetGameOver(true, CauseCapture)
	a.SetGameOver(true, CauseCapture)

	evs := rec.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.GameOver, evs[0].Type)
	assert.Equal(t, "capture", evs[0].Payload["cause"])
}

func TestAggregator_RestoreAndReset(t *testing.T) {
	var rec events.Recorder
	a := NewAggregator(&rec)

	a.Restore(State{Suspicion: 250, Reputation: math.NaN(), GameOver: true})
	assert.Equal(t, MaxSuspicion, a.Suspicion())
	assert.Equal(t, DefaultReputation, a.Reputation())
	assert.True(t, a.GameOver())
	assert.Empty(t, rec.Events(), "Восстановление не публикует событий")

	a.Reset()
	assert.Equal(t, State{Suspicion: 0, GameOver: false, Reputation: DefaultReputation}, a.State())
}
