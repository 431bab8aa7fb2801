// Package meta хранит глобальное состояние забега: подозрительность, флаг окончания игры и репутацию.
package meta

import (
	"math"

	"github.com/annel0/echoes-hidden/internal/events"
)

const (
	MaxSuspicion      = 100.0
	MinReputation     = 0.0
	MaxReputation     = 100.0
	DefaultReputation = 50.0
)

// Cause задаёт причину окончания игры
type Cause string

const (
	CauseSuspicion Cause = "suspicion" // Подозрительность достигла максимума
	CauseCapture   Cause = "capture"   // Охранник поймал игрока
	CauseManual    Cause = "manual"    // Установлено извне
)

// State содержит снимок глобального состояния
type State struct {
	Suspicion  float64 `json:"suspicion"`
	GameOver   bool    `json:"gameOver"`
	Reputation float64 `json:"reputation"`
}

// finite возвращает v, либо fallback если v равно NaN или ±∞
func finite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ApplySuspicionDelta возвращает clamp(current + delta) в диапазоне [0, MaxSuspicion].
// Некорректная дельта считается нулевой.
func ApplySuspicionDelta(current, delta float64) float64 {
	return clamp(finite(current, 0)+finite(delta, 0), 0, MaxSuspicion)
}

// Aggregator единолично владеет глобальным состоянием.
// Не потокобезопасен: вызывающий сериализует доступ.
type Aggregator struct {
	suspicion  float64
	gameOver   bool
	reputation float64

	emitter events.Emitter
}

// NewAggregator создаёт агрегатор в начальном состоянии
func NewAggregator(emitter events.Emitter) *Aggregator {
	return &Aggregator{
		reputation: DefaultReputation,
		emitter:    emitter,
	}
}

// Suspicion возвращает текущую подозрительность
func (a *Aggregator) Suspicion() float64 { return a.suspicion }

// GameOver возвращает флаг окончания игры
func (a *Aggregator) GameOver() bool { return a.gameOver }

// Reputation возвращает текущую репутацию
func (a *Aggregator) Reputation() float64 { return a.reputation }

// State возвращает снимок состояния
func (a *Aggregator) State() State {
	return State{
		Suspicion:  a.suspicion,
		GameOver:   a.gameOver,
		Reputation: a.reputation,
	}
}

// SetSuspicion устанавливает подозрительность с ограничением диапазона.
// Переход снизу на максимум взводит окончание игры и публикует событие ровно один раз;
// повторная установка максимума ничего не делает. Возвращает true на этом переходе.
func (a *Aggregator) SetSuspicion(level float64) bool {
	next := clamp(finite(level, a.suspicion), 0, MaxSuspicion)
	prev := a.suspicion
	a.suspicion = next

	if next >= MaxSuspicion && prev < MaxSuspicion {
		// Флаг взводится до публикации: слушатели обоих событий видят окончание игры
		wasOver := a.gameOver
		a.gameOver = true
		events.Emit(a.emitter, events.Event{
			Type:    events.SuspicionMaxed,
			Payload: map[string]any{"previous": prev},
		})
		if !wasOver {
			a.emitGameOver(CauseSuspicion)
		}
		return true
	}
	return false
}

// ApplyTickDelta прибавляет суммарный вклад охранников за тик и фиксирует результат одной записью
func (a *Aggregator) ApplyTickDelta(delta float64) bool {
	return a.SetSuspicion(ApplySuspicionDelta(a.suspicion, delta))
}

// SetGameOver устанавливает флаг окончания игры. Событие публикуется только при взведении.
func (a *Aggregator) SetGameOver(status bool, cause Cause) {
	if status && !a.gameOver {
		a.gameOver = true
		a.emitGameOver(cause)
		return
	}
	a.gameOver = status
}

func (a *Aggregator) emitGameOver(cause Cause) {
	events.Emit(a.emitter, events.Event{
		Type:    events.GameOver,
		Payload: map[string]any{"cause": string(cause)},
	})
}

// UpdateReputation изменяет репутацию на amount с ограничением [0, 100]
func (a *Aggregator) UpdateReputation(amount float64) float64 {
	prev := a.reputation
	a.reputation = clamp(prev+finite(amount, 0), MinReputation, MaxReputation)

	if a.reputation != prev {
		events.Emit(a.emitter, events.Event{
			Type: events.ReputationChanged,
			Payload: map[string]any{
				"previous": prev,
				"current":  a.reputation,
			},
		})
	}
	return a.reputation
}

// Restore применяет сохранённое состояние без публикации событий.
// Некорректные значения заменяются текущими, диапазоны ограничиваются.
func (a *Aggregator) Restore(s State) {
	a.suspicion = clamp(finite(s.Suspicion, a.suspicion), 0, MaxSuspicion)
	a.reputation = clamp(finite(s.Reputation, a.reputation), MinReputation, MaxReputation)
	a.gameOver = s.GameOver
}

// Reset возвращает начальное состояние: подозрительность 0, игра продолжается, репутация 50
func (a *Aggregator) Reset() {
	a.suspicion = 0
	a.gameOver = false
	a.reputation = DefaultReputation
}
