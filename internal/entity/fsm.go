package entity

import (
	"fmt"
	"math"

	"github.com/annel0/echoes-hidden/internal/vec"
)

// GuardState представляет состояние конечного автомата охранника
type GuardState uint8

const (
	GuardPatrol GuardState = iota // Обход маршрута (начальное состояние)
	GuardAlert                    // Потерял игрока из виду, стоит на месте
	GuardChase                    // Преследует игрока
)

// String возвращает строковое представление состояния
func (s GuardState) String() string {
	switch s {
	case GuardPatrol:
		return "PATROL"
	case GuardAlert:
		return "ALERT"
	case GuardChase:
		return "CHASE"
	default:
		return "UNKNOWN"
	}
}

// MarshalText сериализует состояние строкой (для JSON-снимков)
func (s GuardState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText разбирает состояние из строки
func (s *GuardState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "PATROL":
		*s = GuardPatrol
	case "ALERT":
		*s = GuardAlert
	case "CHASE":
		*s = GuardChase
	default:
		return fmt.Errorf("неизвестное состояние охранника: %q", text)
	}
	return nil
}

// movement определяет перемещение охранника в конкретном состоянии
type movement interface {
	Speed(t GuardTuning) float64
	Move(g *Guard, player vec.Vec2Float, step float64)
}

// movements сопоставляет состоянию его поведение
var movements = map[GuardState]movement{
	GuardPatrol: patrolMovement{},
	GuardAlert:  holdMovement{},
	GuardChase:  chaseMovement{},
}

// === Конкретные состояния ===

// patrolMovement обходит замкнутый маршрут
type patrolMovement struct{}

func (patrolMovement) Speed(t GuardTuning) float64 { return t.PatrolSpeed }

func (patrolMovement) Move(g *Guard, _ vec.Vec2Float, step float64) {
	// С пустым маршрутом охранник стоит на месте
	if len(g.patrol) == 0 {
		return
	}

	target := g.patrol[g.pathIndex]
	d := g.Position.DistanceTo(target)

	if d < g.tuning.WaypointTolerance {
		// Маршрут замкнут: после последней точки возвращаемся к первой
		g.pathIndex = (g.pathIndex + 1) % len(g.patrol)
		return
	}

	g.advance(target, d, step)
}

// chaseMovement ведёт напрямую к игроку, без поиска пути и обхода стен
type chaseMovement struct{}

func (chaseMovement) Speed(t GuardTuning) float64 { return t.ChaseSpeed }

func (chaseMovement) Move(g *Guard, player vec.Vec2Float, step float64) {
	d := g.Position.DistanceTo(player)
	if d == 0 {
		return
	}
	g.advance(player, d, step)
}

// holdMovement удерживает охранника на месте.
// TODO: обход последней известной позиции игрока вместо простого ожидания.
type holdMovement struct{}

func (holdMovement) Speed(GuardTuning) float64 { return 0 }

func (holdMovement) Move(*Guard, vec.Vec2Float, float64) {}

// advance смещает охранника к цели не дальше, чем до неё самой, и разворачивает его по ходу движения
func (g *Guard) advance(target vec.Vec2Float, dist, step float64) {
	if step <= 0 {
		return
	}
	angle := g.Position.AngleTo(target)
	g.Facing = angle
	g.Position = g.Position.Step(angle, math.Min(step, dist))
}
