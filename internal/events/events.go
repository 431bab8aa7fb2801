// Package events реализует синхронную доставку дискретных игровых событий.
// Ядро симуляции публикует события здесь и не зависит от логирования или ввода-вывода;
// внешние подписчики (лог, аналитика, шина) подключаются через Subscribe.
package events

import (
	"sync"
)

// Type задаёт тип игрового события
type Type string

const (
	SuspicionMaxed    Type = "suspicion_maxed"    // Подозрительность достигла максимума
	GameOver          Type = "game_over"          // Игра окончена (поимка или максимум подозрительности)
	GameReset         Type = "game_reset"         // Полный сброс состояния
	MissionActivated  Type = "mission_activated"  // Принята новая миссия
	MissionCompleted  Type = "mission_completed"  // Активная миссия завершена
	GuardSpotted      Type = "guard_spotted"      // Охранник заметил игрока
	GuardLostSight    Type = "guard_lost_sight"   // Охранник потерял игрока из виду
	ReputationChanged Type = "reputation_changed" // Изменилась репутация
)

// Event описывает дискретное событие симуляции
type Event struct {
	Type    Type           `json:"type"`
	Tick    uint64         `json:"tick"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Listener получает события синхронно, на горутине отправителя
type Listener func(Event)

// Emitter задаёт узкий интерфейс публикации, от которого зависят компоненты ядра
type Emitter interface {
	Emit(ev Event)
}

// Dispatcher рассылает события подписчикам в порядке подписки
type Dispatcher struct {
	mu        sync.RWMutex
	listeners []listenerEntry
	nextID    int
}

type listenerEntry struct {
	id int
	fn Listener
}

// NewDispatcher создаёт пустой диспетчер
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe добавляет слушателя и возвращает функцию отписки
func (d *Dispatcher) Subscribe(l Listener) (unsubscribe func()) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners = append(d.listeners, listenerEntry{id: id, fn: l})
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			for i, e := range d.listeners {
				if e.id == id {
					d.listeners = append(d.listeners[:i:i], d.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Emit синхронно вызывает всех слушателей.
// Слушатели могут отписываться во время доставки: рассылка идёт по копии списка.
func (d *Dispatcher) Emit(ev Event) {
	d.mu.RLock()
	snapshot := make([]listenerEntry, len(d.listeners))
	copy(snapshot, d.listeners)
	d.mu.RUnlock()

	for _, e := range snapshot {
		e.fn(ev)
	}
}

// Len возвращает количество подписчиков
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners)
}

// Emit публикует событие через emitter, допуская nil
func Emit(e Emitter, ev Event) {
	if e == nil {
		return
	}
	e.Emit(ev)
}

// Recorder накапливает события; используется headless-драйвером и в тестах
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit сохраняет событие
func (r *Recorder) Emit(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Events возвращает копию накопленных событий
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count возвращает количество событий заданного типа
func (r *Recorder) Count(t Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

// Reset очищает накопленные события
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
