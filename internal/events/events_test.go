package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_DeliversInSubscriptionOrder(t *testing.T) {
	d := NewDispatcher()
	var order []string

	d.Subscribe(func(ev Event) { order = append(order, "first:"+string(ev.Type)) })
	d.Subscribe(func(ev Event) { order = append(order, "second:"+string(ev.Type)) })

	d.Emit(Event{Type: GameOver, Tick: 3})

	assert.Equal(t, []string{"first:game_over", "second:game_over"}, order, "Слушатели вызываются синхронно по порядку подписки")
}

func TestDispatcher_Unsubscribe(t *testing.T) {
	d := NewDispatcher()
	calls := 0

	unsubscribe := d.Subscribe(func(Event) { calls++ })
	d.Emit(Event{Type: GameReset})
	unsubscribe()
	unsubscribe() // Повторная отписка безопасна
	d.Emit(Event{Type: GameReset})

	assert.Equal(t, 1, calls)
	assert.Zero(t, d.Len())
}

func TestDispatcher_UnsubscribeDuringDelivery(t *testing.T) {
	d := NewDispatcher()
	calls := 0

	var unsubscribe func()
	unsubscribe = d.Subscribe(func(Event) {
		calls++
		unsubscribe()
	})
	other := 0
	d.Subscribe(func(Event) { other++ })

	d.Emit(Event{Type: SuspicionMaxed})
	d.Emit(Event{Type: SuspicionMaxed})

	assert.Equal(t, 1, calls, "Отписавшийся слушатель больше не получает события")
	assert.Equal(t, 2, other)
}

func TestEmit_NilEmitter(t *testing.T) {
	assert.NotPanics(t, func() {
		Emit(nil, Event{Type: GameOver})
	})
}

func TestRecorder(t *testing.T) {
	var r Recorder
	Emit(&r, Event{Type: GuardSpotted})
	Emit(&r, Event{Type: GuardSpotted})
	Emit(&r, Event{Type: GuardLostSight})

	assert.Len(t, r.Events(), 3)
	assert.Equal(t, 2, r.Count(GuardSpotted))

	r.Reset()
	assert.Empty(t, r.Events())
}
