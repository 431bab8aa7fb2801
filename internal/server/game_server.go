// Package server ведёт симуляцию в реальном времени и раздаёт её состояние клиентам.
package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/annel0/echoes-hidden/internal/entity"
	"github.com/annel0/echoes-hidden/internal/events"
	"github.com/annel0/echoes-hidden/internal/game"
	"github.com/annel0/echoes-hidden/internal/logging"
)

// FrameDelta задаёт дельту одного тика в единицах кадра 60 Гц
const FrameDelta = 1.0

// ErrAlreadyRunning возвращается при повторном запуске цикла
var ErrAlreadyRunning = errors.New("игровой цикл уже запущен")

// ErrStopped возвращается при попытке перезапустить остановленный сервер
var ErrStopped = errors.New("игровой цикл остановлен")

// GameServer владеет симуляцией и продвигает её с фиксированной частотой.
// Все обращения к симуляции сериализуются мьютексом.
type GameServer struct {
	mu    sync.Mutex
	sim   *game.Simulation
	input entity.Input
	last  game.TickReport

	tickRate time.Duration
	hub      *Hub
	metrics  *GameMetrics
	logger   *logging.Logger

	running bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	unsub   func()
}

// Option настраивает GameServer
type Option func(*GameServer)

// WithMetrics подключает Prometheus-метрики
func WithMetrics(m *GameMetrics) Option {
	return func(s *GameServer) { s.metrics = m }
}

// WithLogger задаёт логгер
func WithLogger(l *logging.Logger) Option {
	return func(s *GameServer) { s.logger = l }
}

// NewGameServer создаёт сервер для симуляции с частотой tickRate тиков в секунду
func NewGameServer(sim *game.Simulation, tickRate int, opts ...Option) *GameServer {
	if tickRate <= 0 {
		tickRate = 60
	}

	s := &GameServer{
		sim:      sim,
		tickRate: time.Second / time.Duration(tickRate),
		logger:   logging.GetServerLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.hub = NewHub(s.SetInput, s.logger)

	// События ядра уходят клиентам и в метрики
	s.unsub = sim.Events().Subscribe(s.onEvent)
	return s
}

func (s *GameServer) onEvent(ev events.Event) {
	if ev.Type == events.GameOver && s.metrics != nil {
		cause, _ := ev.Payload["cause"].(string)
		s.metrics.GameOver(cause)
	}
	s.hub.Broadcast("event", ev)
}

// Hub возвращает хаб WebSocket-клиентов
func (s *GameServer) Hub() *Hub { return s.hub }

// TickInterval возвращает период игрового цикла
func (s *GameServer) TickInterval() time.Duration { return s.tickRate }

// SetInput запоминает текущее намерение движения; применяется в следующих тиках
func (s *GameServer) SetInput(in entity.Input) {
	s.mu.Lock()
	s.input = in
	s.mu.Unlock()
}

// Input возвращает текущее намерение движения
func (s *GameServer) Input() entity.Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// WithSimulation выполняет fn с эксклюзивным доступом к симуляции
func (s *GameServer) WithSimulation(fn func(sim *game.Simulation)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.sim)
}

// Snapshot возвращает снимок состояния
func (s *GameServer) Snapshot() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Snapshot()
}

// LastReport возвращает итог последнего тика
func (s *GameServer) LastReport() game.TickReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Step выполняет один тик с текущим вводом и рассылает снимок
func (s *GameServer) Step() game.TickReport {
	start := time.Now()

	s.mu.Lock()
	report := s.sim.Tick(FrameDelta, s.input)
	snap := s.sim.Snapshot()
	s.last = report
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.Observe(report, snap, time.Since(start).Seconds())
	}
	if !report.Frozen {
		s.hub.Broadcast("snapshot", snap)
	}
	if report.Captured {
		s.logger.Info("🚨 Игрок пойман на тике %d", report.Tick)
	}
	return report
}

// Start запускает игровой цикл и хаб
func (s *GameServer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.mu.Unlock()

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.hub.Run(ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.gameLoop(ctx)
	}()

	s.logger.Info("🎮 Игровой цикл запущен (%s на тик)", s.tickRate)
	return nil
}

// gameLoop запускает игровой цикл с фиксированной частотой
func (s *GameServer) gameLoop(ctx context.Context) {
	ticker := time.NewTicker(s.tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Step()
		}
	}
}

// Stop останавливает цикл и дожидается завершения горутин
func (s *GameServer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.stopped = true
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.unsub()
	s.logger.Info("🛑 Игровой цикл остановлен")
}
