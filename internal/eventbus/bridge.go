package eventbus

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/annel0/echoes-hidden/internal/events"
	"github.com/annel0/echoes-hidden/internal/logging"
)

// bridgePayload описывает полезную нагрузку конверта игрового события
type bridgePayload struct {
	Tick    uint64         `json:"tick"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Bridge пересылает игровые события из синхронного диспетчера в шину.
// Игровой цикл не ждёт шину: события ставятся в очередь, при переполнении отбрасываются.
type Bridge struct {
	bus     EventBus
	source  string
	queue   chan events.Event
	dropped uint64
	logger  *logging.Logger
}

// NewBridge создаёт мост с очередью заданной ёмкости
func NewBridge(bus EventBus, source string, capacity int, logger *logging.Logger) *Bridge {
	return &Bridge{
		bus:    bus,
		source: source,
		queue:  make(chan events.Event, capacity),
		logger: logger,
	}
}

// Attach подписывает мост на диспетчер и возвращает функцию отписки
func (b *Bridge) Attach(d *events.Dispatcher) func() {
	return d.Subscribe(b.Emit)
}

// Emit ставит событие в очередь, не блокируя вызывающего
func (b *Bridge) Emit(ev events.Event) {
	select {
	case b.queue <- ev:
	default:
		atomic.AddUint64(&b.dropped, 1)
	}
}

// Dropped возвращает количество отброшенных из-за переполнения событий
func (b *Bridge) Dropped() uint64 {
	return atomic.LoadUint64(&b.dropped)
}

// Run публикует события из очереди до отмены контекста, затем досылает остаток
func (b *Bridge) Run(ctx context.Context) {
	for {
		select {
		case ev := <-b.queue:
			b.publish(ctx, ev)
		case <-ctx.Done():
			b.drain()
			return
		}
	}
}

func (b *Bridge) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		select {
		case ev := <-b.queue:
			b.publish(ctx, ev)
		default:
			return
		}
	}
}

func (b *Bridge) publish(ctx context.Context, ev events.Event) {
	env, err := Wrap(b.source, ev)
	if err != nil {
		b.logger.Error("❌ Не удалось упаковать событие %s: %v", ev.Type, err)
		return
	}

	pctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := b.bus.Publish(pctx, env); err != nil {
		b.logger.Warn("⚠️ Событие %s не опубликовано: %v", ev.Type, err)
	}
}

// Wrap упаковывает игровое событие в конверт шины
func Wrap(source string, ev events.Event) (*Envelope, error) {
	payload, err := json.Marshal(bridgePayload{Tick: ev.Tick, Payload: ev.Payload})
	if err != nil {
		return nil, err
	}

	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: string(ev.Type),
		Version:   1,
		Priority:  priorityOf(ev.Type),
		Payload:   payload,
	}, nil
}

// Unwrap восстанавливает игровое событие из конверта
func Unwrap(env *Envelope) (events.Event, error) {
	var p bridgePayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return events.Event{}, err
	}
	return events.Event{Type: events.Type(env.EventType), Tick: p.Tick, Payload: p.Payload}, nil
}

// priorityOf задаёт приоритет: события окончания и сброса игры не отбрасываются при переполнении
func priorityOf(t events.Type) int {
	switch t {
	case events.GameOver, events.SuspicionMaxed, events.GameReset:
		return 9
	case events.MissionActivated, events.MissionCompleted:
		return 6
	default:
		return 3
	}
}
