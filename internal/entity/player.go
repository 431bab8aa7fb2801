package entity

import (
	"github.com/annel0/echoes-hidden/internal/physics"
	"github.com/annel0/echoes-hidden/internal/vec"
)

// Input хранит состояние клавиш направления в текущем тике
type Input struct {
	Up    bool `json:"up"`
	Down  bool `json:"down"`
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// IntentFromInput переводит нажатые клавиши в желаемое смещение.
// Диагональ нормализуется, чтобы скорость не превышала speed*delta.
func IntentFromInput(in Input, speed, delta float64) vec.Vec2Float {
	var dx, dy float64
	if in.Left {
		dx--
	}
	if in.Right {
		dx++
	}
	if in.Up {
		dy--
	}
	if in.Down {
		dy++
	}

	// Единичный вектор направления: по диагонали обе оси масштабируются на 1/√2
	dir := vec.Vec2Float{X: dx, Y: dy}.Normalized()
	return dir.Mul(speed * sanitizeDelta(delta))
}

// MoveOutcome описывает, как было применено смещение
type MoveOutcome uint8

const (
	MoveNone    MoveOutcome = iota // Смещение нулевое
	MoveFull                       // Смещение применено целиком
	MoveSlideX                     // Применена только ось X
	MoveSlideY                     // Применена только ось Y
	MoveBlocked                    // Обе оси заблокированы
)

// String возвращает строковое представление результата
func (o MoveOutcome) String() string {
	switch o {
	case MoveFull:
		return "full"
	case MoveSlideX:
		return "slide_x"
	case MoveSlideY:
		return "slide_y"
	case MoveBlocked:
		return "blocked"
	default:
		return "none"
	}
}

// Occupier сообщает, может ли прямоугольник с заданным центром стоять на карте
type Occupier interface {
	CanOccupy(center vec.Vec2Float, halfWidth, halfHeight float64) bool
}

// Mover применяет смещения к прямоугольнику игрока с проверкой стен
type Mover struct {
	space    Occupier
	collider *physics.BoxCollider
}

// NewMover создаёт интегратор движения для карты и коллайдера
func NewMover(space Occupier, collider *physics.BoxCollider) *Mover {
	return &Mover{space: space, collider: collider}
}

// Move пытается сместить центр from на intent.
// Сначала проверяется полное смещение, затем скольжение по X, затем по Y.
func (m *Mover) Move(from vec.Vec2Float, intent vec.Vec2Float) (vec.Vec2Float, MoveOutcome) {
	if !intent.IsFinite() || intent.IsZero() {
		return from, MoveNone
	}

	hw, hh := m.collider.HalfWidth, m.collider.HalfHeight

	full := from.Add(intent)
	if m.space.CanOccupy(full, hw, hh) {
		return full, MoveFull
	}

	if intent.X != 0 {
		slideX := vec.Vec2Float{X: from.X + intent.X, Y: from.Y}
		if m.space.CanOccupy(slideX, hw, hh) {
			return slideX, MoveSlideX
		}
	}

	if intent.Y != 0 {
		slideY := vec.Vec2Float{X: from.X, Y: from.Y + intent.Y}
		if m.space.CanOccupy(slideY, hw, hh) {
			return slideY, MoveSlideY
		}
	}

	return from, MoveBlocked
}

// Player описывает персонажа, управляемого пользователем
type Player struct {
	Position  vec.Vec2Float
	Facing    float64
	Speed     float64
	Inventory []string
}

// PlayerSnapshot содержит сериализуемый снимок игрока
type PlayerSnapshot struct {
	Position  vec.Vec2Float `json:"position"`
	Facing    float64       `json:"facing"`
	Speed     float64       `json:"speed"`
	Inventory []string      `json:"inventory"`
}

// NewPlayer создаёт игрока в точке появления
func NewPlayer(spawn vec.Vec2Float, speed float64) *Player {
	return &Player{
		Position:  spawn,
		Speed:     speed,
		Inventory: []string{},
	}
}

// Apply двигает игрока и обновляет направление взгляда по фактическому смещению
func (p *Player) Apply(m *Mover, intent vec.Vec2Float) MoveOutcome {
	next, outcome := m.Move(p.Position, intent)

	switch outcome {
	case MoveFull:
		p.Facing = intent.Heading()
	case MoveSlideX:
		p.Facing = vec.Vec2Float{X: intent.X}.Heading()
	case MoveSlideY:
		p.Facing = vec.Vec2Float{Y: intent.Y}.Heading()
	}

	p.Position = next
	return outcome
}

// Snapshot возвращает снимок игрока
func (p *Player) Snapshot() PlayerSnapshot {
	inv := make([]string, len(p.Inventory))
	copy(inv, p.Inventory)
	return PlayerSnapshot{
		Position:  p.Position,
		Facing:    p.Facing,
		Speed:     p.Speed,
		Inventory: inv,
	}
}

// Restore применяет снимок к игроку
func (p *Player) Restore(s PlayerSnapshot) {
	p.Position = s.Position
	p.Facing = s.Facing
	p.Speed = s.Speed
	p.Inventory = append([]string{}, s.Inventory...)
}
