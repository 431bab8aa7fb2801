package entity

import (
	"math"
	"testing"

	"github.com/annel0/echoes-hidden/internal/physics"
	"github.com/annel0/echoes-hidden/internal/vec"
	"github.com/annel0/echoes-hidden/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRoomMover строит комнату 3×2 клетки по 40 px, окружённую стенами.
// Свободная область: x ∈ [40, 160), y ∈ [40, 120).
func newRoomMover(t *testing.T) *Mover {
	t.Helper()
	m, err := world.ParseTileMap(40, []string{
		"#####",
		"#...#",
		"#...#",
		"#####",
	})
	require.NoError(t, err)
	return NewMover(m, physics.NewBoxCollider(12, 12))
}

func TestIntentFromInput(t *testing.T) {
	cases := []struct {
		name string
		in   Input
		want vec.Vec2Float
	}{
		{"нет ввода", Input{}, vec.Vec2Float{}},
		{"вправо", Input{Right: true}, vec.Vec2Float{X: 4}},
		{"вверх", Input{Up: true}, vec.Vec2Float{Y: -4}},
		{"противоположные клавиши", Input{Left: true, Right: true}, vec.Vec2Float{}},
		{"диагональ", Input{Up: true, Right: true}, vec.Vec2Float{X: 4 * math.Sqrt2 / 2, Y: -4 * math.Sqrt2 / 2}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := IntentFromInput(c.in, 4, 1)
			assert.InDelta(t, c.want.X, got.X, 1e-9)
			assert.InDelta(t, c.want.Y, got.Y, 1e-9)
		})
	}

	diag := IntentFromInput(Input{Down: true, Left: true}, 4, 1)
	assert.InDelta(t, 4, diag.Length(), 1e-9, "Диагональная скорость не превышает обычную")

	assert.True(t, IntentFromInput(Input{Right: true}, 4, math.NaN()).IsZero(), "NaN шага времени даёт нулевое смещение")
}

func TestMover_FullMove(t *testing.T) {
	m := newRoomMover(t)
	next, outcome := m.Move(vec.Vec2Float{X: 100, Y: 80}, vec.Vec2Float{X: 4, Y: 0})

	assert.Equal(t, MoveFull, outcome)
	assert.Equal(t, vec.Vec2Float{X: 104, Y: 80}, next)
}

func TestMover_SlidesAlongWall(t *testing.T) {
	m := newRoomMover(t)

	// Слева стена: остаётся только вертикальная составляющая
	next, outcome := m.Move(vec.Vec2Float{X: 52, Y: 80}, vec.Vec2Float{X: -4, Y: -4})
	assert.Equal(t, MoveSlideY, outcome)
	assert.Equal(t, vec.Vec2Float{X: 52, Y: 76}, next)

	// Сверху стена: остаётся только горизонтальная составляющая
	next, outcome = m.Move(vec.Vec2Float{X: 100, Y: 52}, vec.Vec2Float{X: 4, Y: -4})
	assert.Equal(t, MoveSlideX, outcome)
	assert.Equal(t, vec.Vec2Float{X: 104, Y: 52}, next)
}

func TestMover_BlockedInCorner(t *testing.T) {
	m := newRoomMover(t)
	from := vec.Vec2Float{X: 52, Y: 52}

	next, outcome := m.Move(from, vec.Vec2Float{X: -4, Y: -4})
	assert.Equal(t, MoveBlocked, outcome)
	assert.Equal(t, from, next)
}

func TestMover_RejectsNonFiniteIntent(t *testing.T) {
	m := newRoomMover(t)
	from := vec.Vec2Float{X: 100, Y: 80}

	next, outcome := m.Move(from, vec.Vec2Float{X: math.NaN(), Y: 1})
	assert.Equal(t, MoveNone, outcome)
	assert.Equal(t, from, next)
}

func TestPlayer_WallStopsRepeatedMoves(t *testing.T) {
	m := newRoomMover(t)
	p := NewPlayer(vec.Vec2Float{X: 52, Y: 80}, 4)

	for i := 0; i < 5; i++ {
		outcome := p.Apply(m, IntentFromInput(Input{Left: true}, p.Speed, 1))
		assert.Equal(t, MoveBlocked, outcome)
	}
	assert.Equal(t, vec.Vec2Float{X: 52, Y: 80}, p.Position, "Стена не пропускает игрока")

	for i := 0; i < 5; i++ {
		p.Apply(m, vec.Vec2Float{X: 1})
	}
	assert.Equal(t, vec.Vec2Float{X: 57, Y: 80}, p.Position, "Пять шагов по 1 px вправо")
}

func TestPlayer_FacingFollowsMovement(t *testing.T) {
	m := newRoomMover(t)
	p := NewPlayer(vec.Vec2Float{X: 52, Y: 80}, 4)

	p.Apply(m, vec.Vec2Float{X: 0, Y: 4})
	assert.InDelta(t, math.Pi/2, p.Facing, 1e-9)

	p.Apply(m, vec.Vec2Float{X: -4, Y: -4})
	assert.InDelta(t, -math.Pi/2, p.Facing, 1e-9, "При скольжении взгляд направлен по оставшейся оси")

	before := p.Facing
	p.Apply(m, vec.Vec2Float{})
	assert.Equal(t, before, p.Facing, "Нулевое смещение не меняет направление")
}

func TestPlayer_SnapshotIsDetached(t *testing.T) {
	p := NewPlayer(vec.Vec2Float{X: 1, Y: 2}, 4)
	p.Inventory = append(p.Inventory, "keycard")

	snap := p.Snapshot()
	snap.Inventory[0] = "forged"
	assert.Equal(t, "keycard", p.Inventory[0], "Снимок не делит инвентарь с игроком")

	other := NewPlayer(vec.Vec2Float{}, 1)
	other.Restore(p.Snapshot())
	assert.Equal(t, p.Position, other.Position)
	assert.Equal(t, []string{"keycard"}, other.Inventory)
}
