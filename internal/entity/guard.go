package entity

import (
	"math"

	"github.com/annel0/echoes-hidden/internal/vec"
	"github.com/annel0/echoes-hidden/internal/world"
)

// Cue сигнализирует внешним слушателям о смене видимости игрока
type Cue uint8

const (
	CueNone      Cue = iota
	CueSpotted       // Игрок попал в поле зрения
	CueLostSight     // Игрок пропал из поля зрения во время погони
)

// String возвращает строковое представление сигнала
func (c Cue) String() string {
	switch c {
	case CueSpotted:
		return "spotted"
	case CueLostSight:
		return "lost_sight"
	default:
		return "none"
	}
}

// Perception содержит то, что охранник знает о мире в текущем тике
type Perception struct {
	Player    vec.Vec2Float // Позиция игрока
	Suspicion float64       // Подозрительность на начало тика
	Delta     float64       // Шаг времени (1.0 = один кадр 60 Гц)
}

// StepResult описывает результат одного шага охранника
type StepResult struct {
	GuardID        uint64
	Seen           bool
	Distance       float64
	SuspicionDelta float64 // Вклад в глобальную подозрительность
	Capture        bool    // Условие поимки выполнено
	Cue            Cue
	From           GuardState
	To             GuardState
}

// GuardSnapshot содержит сериализуемый снимок охранника
type GuardSnapshot struct {
	ID       uint64        `json:"id"`
	Position vec.Vec2Float `json:"position"`
	Facing   float64       `json:"facing"`
	State    GuardState    `json:"state"`
}

// Guard описывает автономного охранника с конусом обзора и конечным автоматом
type Guard struct {
	ID       uint64
	Position vec.Vec2Float
	Facing   float64

	state     GuardState
	patrol    []vec.Vec2Float
	pathIndex int

	spawn       vec.Vec2Float
	spawnFacing float64
	tuning      GuardTuning
}

// NewGuard создаёт охранника из статических данных появления
func NewGuard(spawn world.GuardSpawn, tuning GuardTuning) *Guard {
	// Маршрут неизменяем: копируем, чтобы не делить срез с описанием уровня
	patrol := make([]vec.Vec2Float, len(spawn.Patrol))
	copy(patrol, spawn.Patrol)

	return &Guard{
		ID:          spawn.ID,
		Position:    spawn.Position,
		Facing:      spawn.Facing,
		state:       GuardPatrol,
		patrol:      patrol,
		spawn:       spawn.Position,
		spawnFacing: spawn.Facing,
		tuning:      tuning,
	}
}

// State возвращает текущее состояние автомата
func (g *Guard) State() GuardState {
	return g.state
}

// PathIndex возвращает индекс текущей точки маршрута
func (g *Guard) PathIndex() int {
	return g.pathIndex
}

// Step выполняет один тик: восприятие, переход состояния, движение.
// Движение использует состояние после перехода в этом же тике.
func (g *Guard) Step(p Perception) StepResult {
	delta := sanitizeDelta(p.Delta)
	t := g.tuning

	res := StepResult{
		GuardID:  g.ID,
		From:     g.state,
		Distance: vec.Distance(g.Position, p.Player),
	}
	res.Seen = vec.InCone(g.Position, p.Player, g.Facing, t.FOV, t.ViewRange)

	if res.Seen {
		res.SuspicionDelta = t.SuspicionRateUp * delta

		if g.state != GuardChase {
			g.state = GuardChase
			res.Cue = CueSpotted
		}

		// Поимка сравнивается с подозрительностью на начало тика
		if res.Distance <= t.CaptureRadius && p.Suspicion >= t.CaptureThreshold {
			res.Capture = true
		}
	} else {
		// Подозрительность спадает только у тех, кто не в погоне
		if p.Suspicion > 0 && g.state != GuardChase {
			res.SuspicionDelta = -t.SuspicionRateDown * delta
		}

		if g.state == GuardChase {
			g.state = GuardAlert
			res.Cue = CueLostSight
		}
	}

	m := movements[g.state]
	m.Move(g, p.Player, m.Speed(t)*delta)

	res.To = g.state
	return res
}

// Reset возвращает охранника в точку появления
func (g *Guard) Reset() {
	g.Position = g.spawn
	g.Facing = g.spawnFacing
	g.state = GuardPatrol
	g.pathIndex = 0
}

// Restore применяет сохранённый снимок. Некорректная позиция игнорируется.
func (g *Guard) Restore(s GuardSnapshot) {
	if s.Position.IsFinite() {
		g.Position = s.Position
	}
	if !math.IsNaN(s.Facing) && !math.IsInf(s.Facing, 0) {
		g.Facing = s.Facing
	}
	if _, ok := movements[s.State]; ok {
		g.state = s.State
	}
}

// Snapshot возвращает снимок охранника
func (g *Guard) Snapshot() GuardSnapshot {
	return GuardSnapshot{
		ID:       g.ID,
		Position: g.Position,
		Facing:   g.Facing,
		State:    g.state,
	}
}
