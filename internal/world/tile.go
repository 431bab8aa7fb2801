package world

// TileType определяет тип клетки тайловой карты
type TileType uint8

const (
	TileFloor      TileType = 0 // Обычный пол
	TileWall       TileType = 1 // Стена (непроходима)
	TileRestricted TileType = 2 // Закрытая зона (проходима)
	TileExit       TileType = 3 // Выход из комплекса
	TileFloorAlt   TileType = 4 // Пол другого оттенка
	TileDoor       TileType = 5 // Дверной проём
)

// String возвращает строковое представление типа клетки
func (t TileType) String() string {
	switch t {
	case TileFloor:
		return "FLOOR"
	case TileWall:
		return "WALL"
	case TileRestricted:
		return "RESTRICTED"
	case TileExit:
		return "EXIT"
	case TileFloorAlt:
		return "FLOOR_ALT"
	case TileDoor:
		return "DOOR"
	default:
		return "UNKNOWN"
	}
}

// IsWalkable сообщает, можно ли стоять на клетке. Непроходима только стена.
func (t TileType) IsWalkable() bool {
	return t != TileWall
}

// tileFromRune разбирает символ ASCII-карты
func tileFromRune(r rune) (TileType, bool) {
	switch r {
	case '.':
		return TileFloor, true
	case ',':
		return TileFloorAlt, true
	case '#':
		return TileWall, true
	case 'R':
		return TileRestricted, true
	case 'E':
		return TileExit, true
	case 'D':
		return TileDoor, true
	default:
		return TileWall, false
	}
}
