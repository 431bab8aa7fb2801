package world

import (
	"fmt"

	"github.com/annel0/echoes-hidden/internal/physics"
	"github.com/annel0/echoes-hidden/internal/vec"
)

// TileMap хранит неизменяемую сетку клеток. Создаётся один раз при старте процесса
// и после генерации не меняется, поэтому её можно свободно разделять между агентами.
type TileMap struct {
	cols     int
	rows     int
	tileSize float64
	tiles    []TileType // построчно: tiles[row*cols+col]
}

// newTileMap создаёт карту, заполненную указанным типом клетки
func newTileMap(cols, rows int, tileSize float64, fill TileType) *TileMap {
	tiles := make([]TileType, cols*rows)
	for i := range tiles {
		tiles[i] = fill
	}
	return &TileMap{cols: cols, rows: rows, tileSize: tileSize, tiles: tiles}
}

// ParseTileMap строит карту из ASCII-описания (удобно для тестов и отладочных уровней).
//
// Символы: '#' стена, '.' пол, ',' альтернативный пол, 'R' закрытая зона, 'E' выход, 'D' дверь.
func ParseTileMap(tileSize float64, lines []string) (*TileMap, error) {
	if tileSize <= 0 {
		return nil, fmt.Errorf("недопустимый размер клетки: %v", tileSize)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("пустое описание карты")
	}

	cols := len([]rune(lines[0]))
	m := newTileMap(cols, len(lines), tileSize, TileWall)

	for row, line := range lines {
		runes := []rune(line)
		if len(runes) != cols {
			return nil, fmt.Errorf("строка %d: ожидалось %d символов, получено %d", row, cols, len(runes))
		}
		for col, r := range runes {
			tile, ok := tileFromRune(r)
			if !ok {
				return nil, fmt.Errorf("строка %d, столбец %d: неизвестный символ %q", row, col, r)
			}
			m.tiles[row*cols+col] = tile
		}
	}

	return m, nil
}

// Cols возвращает ширину карты в клетках
func (m *TileMap) Cols() int { return m.cols }

// Rows возвращает высоту карты в клетках
func (m *TileMap) Rows() int { return m.rows }

// TileSize возвращает размер клетки в пикселях
func (m *TileMap) TileSize() float64 { return m.tileSize }

// Width возвращает ширину карты в пикселях
func (m *TileMap) Width() float64 { return float64(m.cols) * m.tileSize }

// Height возвращает высоту карты в пикселях
func (m *TileMap) Height() float64 { return float64(m.rows) * m.tileSize }

// InBounds проверяет, что клетка лежит внутри карты
func (m *TileMap) InBounds(cell vec.Vec2) bool {
	return cell.X >= 0 && cell.X < m.cols && cell.Y >= 0 && cell.Y < m.rows
}

// TileAt возвращает тип клетки. Для клеток вне карты возвращает (TileWall, false).
func (m *TileMap) TileAt(cell vec.Vec2) (TileType, bool) {
	if !m.InBounds(cell) {
		return TileWall, false
	}
	return m.tiles[cell.Y*m.cols+cell.X], true
}

// TileAtPoint возвращает тип клетки под точкой в пиксельных координатах
func (m *TileMap) TileAtPoint(p vec.Vec2Float) (TileType, bool) {
	if !p.IsFinite() {
		return TileWall, false
	}
	return m.TileAt(vec.CellOf(p, m.tileSize))
}

// IsWalkable проверяет, можно ли находиться в точке.
// Точки за пределами карты никогда не проходимы; из типов клеток непроходима только стена.
func (m *TileMap) IsWalkable(p vec.Vec2Float) bool {
	tile, ok := m.TileAtPoint(p)
	if !ok {
		return false
	}
	return tile.IsWalkable()
}

// CanOccupy проверяет, может ли прямоугольник с центром center и полуразмерами
// halfWidth×halfHeight занять позицию: все четыре угла должны быть проходимы.
func (m *TileMap) CanOccupy(center vec.Vec2Float, halfWidth, halfHeight float64) bool {
	return physics.CanMoveToPosition(center, physics.NewBoxCollider(halfWidth, halfHeight), m.IsWalkable)
}

// set изменяет клетку; используется только генератором до публикации карты
func (m *TileMap) set(col, row int, tile TileType) {
	if col < 0 || col >= m.cols || row < 0 || row >= m.rows {
		return
	}
	m.tiles[row*m.cols+col] = tile
}

// get возвращает клетку без проверки публичных инвариантов (для генератора)
func (m *TileMap) get(col, row int) TileType {
	t, _ := m.TileAt(vec.Vec2{X: col, Y: row})
	return t
}
