package world

// Размеры комплекса по умолчанию
const (
	DefaultTileSize = 40.0 // Пикселей в клетке
	CompoundCols    = 60   // Клеток по горизонтали (2400 px)
	CompoundRows    = 45   // Клеток по вертикали (1800 px)
)

// roomSpec описывает комнату с периметром из стен
type roomSpec struct {
	x, y, w, h int
	restricted bool // Пол комнаты считается закрытой зоной
}

// doorSpec описывает дверной проём шириной size клеток
type doorSpec struct {
	x, y     int
	size     int
	vertical bool
}

// CompoundGenerator строит статическую карту охраняемого комплекса
type CompoundGenerator struct {
	TileSize float64
	Cols     int
	Rows     int
}

// NewCompoundGenerator создаёт генератор с размерами по умолчанию
func NewCompoundGenerator() *CompoundGenerator {
	return &CompoundGenerator{
		TileSize: DefaultTileSize,
		Cols:     CompoundCols,
		Rows:     CompoundRows,
	}
}

// Generate строит карту. Результат детерминирован и после возврата не изменяется.
func (g *CompoundGenerator) Generate() *TileMap {
	m := newTileMap(g.Cols, g.Rows, g.TileSize, TileWall)

	// === Внешний периметр ===
	fillRect(m, 2, 2, 56, 41, TileFloor)

	// Шахматная текстура пола
	for r := 2; r < 43; r++ {
		for c := 2; c < 58; c++ {
			if m.get(c, r) == TileFloor && (r+c)%4 == 0 {
				m.set(c, r, TileFloorAlt)
			}
		}
	}

	rooms := []roomSpec{
		{x: 3, y: 3, w: 12, h: 10},                    // Пост охраны
		{x: 42, y: 3, w: 14, h: 10, restricted: true}, // Серверная
		{x: 3, y: 16, w: 14, h: 12},                   // Казарма
		{x: 44, y: 16, w: 12, h: 10},                  // Оружейная
		{x: 3, y: 31, w: 16, h: 11},                   // Столовая
		{x: 22, y: 34, w: 14, h: 8},                   // Склад
		{x: 42, y: 30, w: 14, h: 12, restricted: true}, // Командный центр
		{x: 18, y: 3, w: 10, h: 8},                    // Северные кабинеты
		{x: 30, y: 3, w: 10, h: 8},
	}

	doors := []doorSpec{
		{x: 10, y: 12, size: 2},
		{x: 48, y: 12, size: 2},
		{x: 12, y: 22, size: 2},
		{x: 16, y: 21, size: 2, vertical: true},
		{x: 44, y: 20, size: 2, vertical: true},
		{x: 14, y: 31, size: 2},
		{x: 28, y: 34, size: 2},
		{x: 42, y: 35, size: 2, vertical: true},
		{x: 22, y: 10, size: 2},
		{x: 34, y: 10, size: 2},
	}

	for _, room := range rooms {
		drawRoom(m, room)
	}

	// Колонны во внутреннем дворе (2×2 клетки)
	pillars := [][2]int{
		{24, 18}, {30, 18}, {36, 18},
		{24, 24}, {30, 24}, {36, 24},
		{24, 30}, {30, 30}, {36, 30},
	}
	for _, p := range pillars {
		fillRect(m, p[0], p[1], 2, 2, TileWall)
	}

	for _, door := range doors {
		addDoor(m, door)
	}

	// === Коридоры ===
	fillRect(m, 2, 14, 56, 2, TileFloorAlt) // Горизонтальный по центру
	fillRect(m, 17, 2, 2, 41, TileFloorAlt) // Вертикальный слева
	fillRect(m, 41, 2, 2, 41, TileFloorAlt) // Вертикальный справа
	fillRect(m, 2, 32, 56, 2, TileFloorAlt) // Горизонтальный внизу

	// === Выход ===
	fillRect(m, 28, 0, 4, 3, TileExit)

	return m
}

// fillRect заполняет прямоугольник клеток, обрезая по границам карты
func fillRect(m *TileMap, x, y, w, h int, tile TileType) {
	for row := y; row < y+h && row < m.rows; row++ {
		for col := x; col < x+w && col < m.cols; col++ {
			m.set(col, row, tile)
		}
	}
}

// drawRoom рисует периметр комнаты и заполняет её пол
func drawRoom(m *TileMap, room roomSpec) {
	for col := room.x; col < room.x+room.w; col++ {
		m.set(col, room.y, TileWall)
		m.set(col, room.y+room.h-1, TileWall)
	}
	for row := room.y; row < room.y+room.h; row++ {
		m.set(room.x, row, TileWall)
		m.set(room.x+room.w-1, row, TileWall)
	}

	floor := TileFloor
	if room.restricted {
		floor = TileRestricted
	}
	fillRect(m, room.x+1, room.y+1, room.w-2, room.h-2, floor)
}

// addDoor прорезает дверной проём в стене
func addDoor(m *TileMap, door doorSpec) {
	for i := 0; i < door.size; i++ {
		if door.vertical {
			m.set(door.x, door.y+i, TileDoor)
		} else {
			m.set(door.x+i, door.y, TileDoor)
		}
	}
}
