// Команда event-cli читает игровые события из стрима NATS JetStream.
//
//	event-cli -cmd tail -types game_over,guard_spotted -follow
//	event-cli -cmd stats -duration 5s
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/annel0/echoes-hidden/internal/eventbus"
)

const (
	defaultNATSURL = "nats://127.0.0.1:4222"
	timeFormat     = "15:04:05"
)

func main() {
	var (
		natsURL  = flag.String("nats", defaultNATSURL, "Адрес NATS")
		stream   = flag.String("stream", eventbus.DefaultStream, "Имя стрима JetStream")
		command  = flag.String("cmd", "tail", "Команда: tail, stats")
		types    = flag.String("types", "", "Фильтр по типам событий (через запятую)")
		sources  = flag.String("sources", "", "Фильтр по источникам (через запятую)")
		duration = flag.Duration("duration", 3*time.Second, "Время чтения для stats и tail без -follow")
		limit    = flag.Int("limit", 100, "Максимум событий для tail (0 без ограничения)")
		follow   = flag.Bool("follow", false, "Читать новые события до Ctrl+C")
		asJSON   = flag.Bool("json", false, "Выводить события в JSON")
	)
	flag.Parse()

	bus, err := eventbus.NewJetStreamBus(eventbus.JetStreamConfig{
		URL:    *natsURL,
		Stream: *stream,
		Source: "event-cli",
	})
	if err != nil {
		log.Fatalf("❌ Не удалось подключиться к NATS: %v", err)
	}
	defer bus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	filter := eventbus.Filter{Types: parseStringList(*types), Sources: parseStringList(*sources)}

	switch *command {
	case "tail":
		if !*follow {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, *duration)
			defer cancel()
		}
		p := &Printer{Out: os.Stdout, JSON: *asJSON}
		n, err := Consume(ctx, bus, filter, *limit, p.Print)
		if err != nil {
			log.Fatalf("❌ Ошибка чтения: %v", err)
		}
		fmt.Fprintf(os.Stderr, "\n📊 Всего событий: %d\n", n)

	case "stats":
		ctx, cancel := context.WithTimeout(ctx, *duration)
		defer cancel()
		stats := NewStats()
		if _, err := Consume(ctx, bus, filter, 0, stats.Add); err != nil {
			log.Fatalf("❌ Ошибка чтения: %v", err)
		}
		stats.Write(os.Stdout)

	default:
		fmt.Printf("❌ Неизвестная команда: %s\n", *command)
		fmt.Println("Доступные команды: tail, stats")
		os.Exit(1)
	}
}

// Consume подписывается на шину и передаёт события в fn до отмены контекста
// или до получения limit событий (0 означает без ограничения). Возвращает число событий.
func Consume(ctx context.Context, bus eventbus.EventBus, f eventbus.Filter, limit int, fn func(*eventbus.Envelope)) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu    sync.Mutex
		count int
	)
	sub, err := bus.Subscribe(ctx, f, func(_ context.Context, ev *eventbus.Envelope) {
		mu.Lock()
		defer mu.Unlock()
		if limit > 0 && count >= limit {
			return
		}
		fn(ev)
		count++
		if limit > 0 && count >= limit {
			cancel()
		}
	})
	if err != nil {
		return 0, fmt.Errorf("подписка: %w", err)
	}

	<-ctx.Done()
	sub.Unsubscribe()

	mu.Lock()
	defer mu.Unlock()
	return count, nil
}

// Printer выводит события в читаемом формате или в JSON
type Printer struct {
	Out  io.Writer
	JSON bool
}

// Print выводит одно событие
func (p *Printer) Print(env *eventbus.Envelope) {
	ev, err := eventbus.Unwrap(env)
	if err != nil {
		fmt.Fprintf(p.Out, "⚠️ %s: повреждённая нагрузка: %v\n", env.ID, err)
		return
	}

	if p.JSON {
		data, err := json.Marshal(struct {
			ID        string         `json:"id"`
			Timestamp time.Time      `json:"timestamp"`
			Source    string         `json:"source"`
			Type      string         `json:"type"`
			Tick      uint64         `json:"tick"`
			Payload   map[string]any `json:"payload,omitempty"`
		}{env.ID, env.Timestamp, env.Source, env.EventType, ev.Tick, ev.Payload})
		if err != nil {
			fmt.Fprintf(p.Out, "⚠️ %s: %v\n", env.ID, err)
			return
		}
		fmt.Fprintln(p.Out, string(data))
		return
	}

	fmt.Fprintf(p.Out, "[%s] %s [%s] tick=%d %s\n",
		env.Timestamp.Format(timeFormat), env.Source, env.EventType, ev.Tick, env.ID)
	if len(ev.Payload) > 0 {
		fmt.Fprintf(p.Out, "  %s\n", formatPayload(ev.Payload))
	}
}

// formatPayload выводит пары ключ=значение в порядке ключей
func formatPayload(payload map[string]any) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, payload[k]))
	}
	return strings.Join(parts, " ")
}

// Stats считает события по типам
type Stats struct {
	mu     sync.Mutex
	total  int
	byType map[string]int
	first  time.Time
	last   time.Time
}

// NewStats создаёт пустую статистику
func NewStats() *Stats {
	return &Stats{byType: make(map[string]int)}
}

// Add учитывает событие
func (s *Stats) Add(env *eventbus.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	s.byType[env.EventType]++
	if s.first.IsZero() || env.Timestamp.Before(s.first) {
		s.first = env.Timestamp
	}
	if env.Timestamp.After(s.last) {
		s.last = env.Timestamp
	}
}

// Write выводит статистику, типы по убыванию количества
func (s *Stats) Write(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintln(w, "📊 Статистика событий")
	fmt.Fprintf(w, "Всего событий: %d\n", s.total)
	if s.total == 0 {
		return
	}
	fmt.Fprintf(w, "Период: %s - %s\n", s.first.Format(time.RFC3339), s.last.Format(time.RFC3339))

	types := make([]string, 0, len(s.byType))
	for t := range s.byType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if s.byType[types[i]] != s.byType[types[j]] {
			return s.byType[types[i]] > s.byType[types[j]]
		}
		return types[i] < types[j]
	})

	fmt.Fprintln(w, "\nПо типам:")
	for _, t := range types {
		fmt.Fprintf(w, "  %s: %d\n", t, s.byType[t])
	}
}

// parseStringList парсит строку с разделителями-запятыми
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
