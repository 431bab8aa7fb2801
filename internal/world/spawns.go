package world

import (
	"github.com/annel0/echoes-hidden/internal/vec"
)

// GuardSpawn содержит статические данные для создания охранника
type GuardSpawn struct {
	ID       uint64
	Position vec.Vec2Float
	Facing   float64         // Начальное направление взгляда, радианы
	Patrol   []vec.Vec2Float // Замкнутый маршрут патрулирования
}

// NPCSpawn содержит статические данные для создания NPC-собеседника
type NPCSpawn struct {
	ID       string
	Name     string
	Role     string
	Position vec.Vec2Float
}

// Layout объединяет карту и точки появления всех агентов
type Layout struct {
	Map         *TileMap
	PlayerSpawn vec.Vec2Float
	Guards      []GuardSpawn
	NPCs        []NPCSpawn
}

// cellPoint возвращает левый верхний угол клетки в пикселях
func cellPoint(col, row int, tileSize float64) vec.Vec2Float {
	return vec.Vec2{X: col, Y: row}.Origin(tileSize)
}

// NewCompoundLayout генерирует карту комплекса вместе со стандартными точками появления
func NewCompoundLayout() *Layout {
	gen := NewCompoundGenerator()
	ts := gen.TileSize

	path := func(cells ...[2]int) []vec.Vec2Float {
		points := make([]vec.Vec2Float, 0, len(cells))
		for _, c := range cells {
			points = append(points, cellPoint(c[0], c[1], ts))
		}
		return points
	}

	return &Layout{
		Map:         gen.Generate(),
		PlayerSpawn: cellPoint(20, 14, ts),
		Guards: []GuardSpawn{
			{
				ID:       1,
				Position: cellPoint(10, 15, ts),
				Patrol:   path([2]int{10, 15}, [2]int{38, 15}, [2]int{38, 15}, [2]int{10, 15}),
			},
			{
				ID:       2,
				Position: cellPoint(42, 8, ts),
				Patrol:   path([2]int{42, 5}, [2]int{42, 12}),
			},
			{
				ID:       3,
				Position: cellPoint(30, 22, ts),
				Patrol:   path([2]int{24, 20}, [2]int{36, 20}, [2]int{36, 28}, [2]int{24, 28}),
			},
			{
				ID:       4,
				Position: cellPoint(48, 33, ts),
				Patrol:   path([2]int{44, 33}, [2]int{54, 33}, [2]int{54, 40}, [2]int{44, 40}),
			},
		},
		NPCs: []NPCSpawn{
			{ID: "npc_informant", Name: "Shadow Broker", Role: "Informant", Position: cellPoint(8, 7, ts)},
			{ID: "npc_civilian", Name: "Kitchen Worker", Role: "Civilian", Position: cellPoint(8, 36, ts)},
			{ID: "npc_hacker", Name: "Ghost", Role: "Hacker", Position: cellPoint(26, 6, ts)},
			{ID: "npc_guard_captain", Name: "Ironjaw", Role: "Guard Captain", Position: cellPoint(48, 20, ts)},
		},
	}
}

// FindNPC ищет NPC по идентификатору
func (l *Layout) FindNPC(id string) (NPCSpawn, bool) {
	for _, npc := range l.NPCs {
		if npc.ID == id {
			return npc, true
		}
	}
	return NPCSpawn{}, false
}
