package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	nats "github.com/nats-io/nats.go"

	"github.com/annel0/echoes-hidden/internal/logging"
)

const (
	// DefaultStream стрим событий игры по умолчанию
	DefaultStream = "ECHOES"
	// SubjectPrefix общий префикс subject: echoes.events.<тип>
	SubjectPrefix = "echoes.events"

	dedupWindow  = 2 * time.Minute
	sourceHeader = "Echoes-Source"
)

// JetStreamConfig параметры подключения к NATS JetStream
type JetStreamConfig struct {
	URL       string
	Stream    string
	Retention time.Duration // 0 без ограничения возраста
	Source    string        // Имя процесса, попадает в имя соединения NATS
	Logger    *logging.Logger
}

// JetStreamBus публикует события игры в стрим JetStream.
// Каждый тип события лежит в своём subject, поэтому подписка на один тип
// фильтруется на стороне сервера NATS.
type JetStreamBus struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	stream string
	logger *logging.Logger

	published uint64
	consumed  uint64
	dropped   uint64
}

// EventSubject возвращает subject для типа события.
// Точки и шаблонные символы NATS заменяются на '_'.
func EventSubject(eventType string) string {
	token := strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t':
			return '_'
		}
		return r
	}, eventType)
	if token == "" {
		token = "_"
	}
	return SubjectPrefix + "." + token
}

// filterSubject сужает подписку до subject, если фильтр указывает ровно один тип
func filterSubject(f Filter) string {
	if len(f.Types) == 1 {
		return EventSubject(f.Types[0])
	}
	return SubjectPrefix + ".>"
}

// NewJetStreamBus подключается к NATS и создаёт стрим, если его ещё нет
func NewJetStreamBus(cfg JetStreamConfig) (*JetStreamBus, error) {
	if cfg.Stream == "" {
		cfg.Stream = DefaultStream
	}
	if cfg.Source == "" {
		cfg.Source = "server"
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.GetEventBusLogger()
	}
	logger := cfg.Logger

	nc, err := nats.Connect(cfg.URL,
		nats.Name("echoes-"+cfg.Source),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("⚠️ NATS: соединение потеряно: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("🔁 NATS: переподключение к %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", cfg.URL, err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStream(js, cfg); err != nil {
		nc.Close()
		return nil, err
	}
	logger.Info("📨 JetStream: стрим %s, subjects %s.>", cfg.Stream, SubjectPrefix)

	return &JetStreamBus{nc: nc, js: js, stream: cfg.Stream, logger: logger}, nil
}

func ensureStream(js nats.JetStreamContext, cfg JetStreamConfig) error {
	_, err := js.StreamInfo(cfg.Stream)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("stream info %s: %w", cfg.Stream, err)
	}
	_, err = js.AddStream(&nats.StreamConfig{
		Name:       cfg.Stream,
		Subjects:   []string{SubjectPrefix + ".>"},
		Retention:  nats.LimitsPolicy,
		MaxAge:     cfg.Retention,
		Storage:    nats.FileStorage,
		Duplicates: dedupWindow,
	})
	if err != nil {
		return fmt.Errorf("add stream %s: %w", cfg.Stream, err)
	}
	return nil
}

// Publish кладёт конверт в subject его типа. ID конверта служит ключом
// дедупликации JetStream, повторная публикация того же события отбрасывается.
func (jb *JetStreamBus) Publish(ctx context.Context, ev *Envelope) error {
	data, err := json.Marshal(ev)
	if err != nil {
		atomic.AddUint64(&jb.dropped, 1)
		return fmt.Errorf("marshal %s: %w", ev.EventType, err)
	}

	msg := nats.NewMsg(EventSubject(ev.EventType))
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, ev.ID)
	msg.Header.Set(sourceHeader, ev.Source)

	if _, err := jb.js.PublishMsg(msg, nats.Context(ctx)); err != nil {
		atomic.AddUint64(&jb.dropped, 1)
		return fmt.Errorf("jetstream publish %s: %w", msg.Subject, err)
	}
	atomic.AddUint64(&jb.published, 1)
	return nil
}

// Subscribe читает стрим с начала через упорядоченный эфемерный consumer.
// Consumer исчезает вместе с подпиской и не копится на сервере.
func (jb *JetStreamBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	subj := filterSubject(f)

	natSub, err := jb.js.Subscribe(subj, func(msg *nats.Msg) {
		var ev Envelope
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			atomic.AddUint64(&jb.dropped, 1)
			jb.logger.Warn("⚠️ JetStream: битое событие в %s: %v", msg.Subject, err)
			return
		}
		if !matchFilter(&ev, f) {
			return
		}
		h(ctx, &ev)
		atomic.AddUint64(&jb.consumed, 1)
	}, nats.OrderedConsumer(), nats.DeliverAll())
	if err != nil {
		return nil, fmt.Errorf("jetstream subscribe %s: %w", subj, err)
	}
	jb.logger.Debug("📥 JetStream: подписка на %s", subj)

	return &jetSub{natSub}, nil
}

type jetSub struct {
	s *nats.Subscription
}

func (j *jetSub) Unsubscribe() {
	_ = j.s.Unsubscribe()
}

// Metrics возвращает счётчики процесса. Очередь ведёт сервер NATS, InFlight всегда 0.
func (jb *JetStreamBus) Metrics() Stats {
	return Stats{
		Published: atomic.LoadUint64(&jb.published),
		Consumed:  atomic.LoadUint64(&jb.consumed),
		Dropped:   atomic.LoadUint64(&jb.dropped),
	}
}

// Close дожидается отправки буферизованных сообщений и закрывает соединение
func (jb *JetStreamBus) Close() error {
	return jb.nc.Drain()
}
