// Package game собирает ядро стелс-симуляции: карту, игрока, охранников,
// глобальное состояние и журнал миссий. Время продвигается только явным вызовом Tick.
package game

import (
	"time"

	"github.com/annel0/echoes-hidden/internal/entity"
	"github.com/annel0/echoes-hidden/internal/events"
	"github.com/annel0/echoes-hidden/internal/meta"
	"github.com/annel0/echoes-hidden/internal/mission"
	"github.com/annel0/echoes-hidden/internal/physics"
	"github.com/annel0/echoes-hidden/internal/vec"
	"github.com/annel0/echoes-hidden/internal/world"
)

// Config содержит параметры симуляции
type Config struct {
	Guard            entity.GuardTuning
	Player           entity.PlayerTuning
	InteractionRange float64 // Дистанция разговора с NPC, пиксели
}

// DefaultConfig возвращает стандартные параметры
func DefaultConfig() Config {
	return Config{
		Guard:            entity.DefaultGuardTuning(),
		Player:           entity.DefaultPlayerTuning(),
		InteractionRange: 50,
	}
}

// TickReport описывает итог одного тика
type TickReport struct {
	Tick           uint64
	Frozen         bool // Игра окончена, мир заморожен
	Move           entity.MoveOutcome
	SuspicionDelta float64 // Суммарный вклад охранников до ограничения
	Suspicion      float64
	Maxed          bool // Подозрительность вышла на максимум в этом тике
	Captured       bool
	Guards         []entity.StepResult
}

// Simulation единолично владеет состоянием игры. Не потокобезопасна.
type Simulation struct {
	cfg    Config
	layout *world.Layout

	tick     uint64
	player   *entity.Player
	mover    *entity.Mover
	guards   []*entity.Guard
	agg      *meta.Aggregator
	missions *mission.Log

	dispatcher *events.Dispatcher
	now        func() time.Time
}

// Option настраивает симуляцию
type Option func(*Simulation)

// WithClock подменяет источник времени (метки завершения миссий и сохранений)
func WithClock(now func() time.Time) Option {
	return func(s *Simulation) { s.now = now }
}

// WithDispatcher подключает внешний диспетчер событий
func WithDispatcher(d *events.Dispatcher) Option {
	return func(s *Simulation) { s.dispatcher = d }
}

// New создаёт симуляцию на заданном уровне
func New(layout *world.Layout, cfg Config, opts ...Option) *Simulation {
	s := &Simulation{
		cfg:    cfg,
		layout: layout,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dispatcher == nil {
		s.dispatcher = events.NewDispatcher()
	}

	emitter := &tickEmitter{sim: s}
	s.agg = meta.NewAggregator(emitter)
	s.missions = mission.NewLog(emitter, mission.WithClock(func() time.Time { return s.now() }))

	s.player = entity.NewPlayer(layout.PlayerSpawn, cfg.Player.Speed)
	s.mover = entity.NewMover(layout.Map, physics.NewBoxCollider(cfg.Player.HalfWidth, cfg.Player.HalfHeight))

	s.guards = make([]*entity.Guard, 0, len(layout.Guards))
	for _, spawn := range layout.Guards {
		s.guards = append(s.guards, entity.NewGuard(spawn, cfg.Guard))
	}

	return s
}

// NewDefault создаёт симуляцию на стандартной карте комплекса
func NewDefault(opts ...Option) *Simulation {
	return New(world.NewCompoundLayout(), DefaultConfig(), opts...)
}

// tickEmitter проставляет номер текущего тика и передаёт событие диспетчеру
type tickEmitter struct {
	sim *Simulation
}

func (e *tickEmitter) Emit(ev events.Event) {
	ev.Tick = e.sim.tick
	e.sim.dispatcher.Emit(ev)
}

// Events возвращает диспетчер событий симуляции
func (s *Simulation) Events() *events.Dispatcher { return s.dispatcher }

// Layout возвращает описание уровня
func (s *Simulation) Layout() *world.Layout { return s.layout }

// TickCount возвращает количество выполненных тиков
func (s *Simulation) TickCount() uint64 { return s.tick }

// Aggregator возвращает глобальное состояние
func (s *Simulation) Aggregator() *meta.Aggregator { return s.agg }

// Missions возвращает журнал миссий
func (s *Simulation) Missions() *mission.Log { return s.missions }

// Player возвращает игрока
func (s *Simulation) Player() *entity.Player { return s.player }

// Guards возвращает охранников
func (s *Simulation) Guards() []*entity.Guard { return s.guards }

// Tick продвигает мир на delta единиц времени (1.0 = один кадр 60 Гц).
//
// Порядок: движение игрока, снимок позиции и подозрительности, шаг каждого
// охранника против снимка, одна запись суммарной дельты, проверка поимки.
func (s *Simulation) Tick(delta float64, in entity.Input) TickReport {
	if s.agg.GameOver() {
		return TickReport{Tick: s.tick, Frozen: true, Suspicion: s.agg.Suspicion()}
	}

	s.tick++
	report := TickReport{Tick: s.tick}

	intent := entity.IntentFromInput(in, s.player.Speed, delta)
	report.Move = s.player.Apply(s.mover, intent)

	perception := entity.Perception{
		Player:    s.player.Position,
		Suspicion: s.agg.Suspicion(),
		Delta:     delta,
	}

	report.Guards = make([]entity.StepResult, 0, len(s.guards))
	for _, g := range s.guards {
		res := g.Step(perception)
		report.Guards = append(report.Guards, res)
		report.SuspicionDelta += res.SuspicionDelta
		if res.Capture {
			report.Captured = true
		}
	}

	report.Maxed = s.agg.ApplyTickDelta(report.SuspicionDelta)

	if report.Captured {
		s.agg.SetGameOver(true, meta.CauseCapture)
	}

	for _, res := range report.Guards {
		s.emitCue(res)
	}

	report.Suspicion = s.agg.Suspicion()
	return report
}

func (s *Simulation) emitCue(res entity.StepResult) {
	var t events.Type
	switch res.Cue {
	case entity.CueSpotted:
		t = events.GuardSpotted
	case entity.CueLostSight:
		t = events.GuardLostSight
	default:
		return
	}
	s.dispatcher.Emit(events.Event{
		Type: t,
		Tick: s.tick,
		Payload: map[string]any{
			"guard":    res.GuardID,
			"distance": res.Distance,
		},
	})
}

// UpdateReputation изменяет репутацию игрока (исход диалога)
func (s *Simulation) UpdateReputation(amount float64) float64 {
	return s.agg.UpdateReputation(amount)
}

// SetSuspicion устанавливает подозрительность напрямую
func (s *Simulation) SetSuspicion(level float64) {
	s.agg.SetSuspicion(level)
}

// ActivateMission делает миссию активной
func (s *Simulation) ActivateMission(m mission.Mission) {
	s.missions.Activate(m)
}

// CompleteMission завершает активную миссию
func (s *Simulation) CompleteMission() (mission.Mission, bool) {
	return s.missions.Complete()
}

// Interact возвращает первого NPC, стоящего ближе дистанции разговора
func (s *Simulation) Interact() (world.NPCSpawn, bool) {
	for _, npc := range s.layout.NPCs {
		if vec.Distance(s.player.Position, npc.Position) < s.cfg.InteractionRange {
			return npc, true
		}
	}
	return world.NPCSpawn{}, false
}

// Reset выполняет полный сброс забега: игрок в точке появления, подозрительность 0,
// репутация 50, миссии очищены, охранники на исходных позициях.
func (s *Simulation) Reset() {
	s.player.Position = s.layout.PlayerSpawn
	s.player.Facing = 0
	s.player.Speed = s.cfg.Player.Speed
	s.player.Inventory = []string{}

	s.agg.Reset()
	s.missions.Reset()
	for _, g := range s.guards {
		g.Reset()
	}

	s.dispatcher.Emit(events.Event{Type: events.GameReset, Tick: s.tick})
}
