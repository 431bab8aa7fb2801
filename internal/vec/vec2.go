package vec

import "math"

// Vec2 представляет целочисленные координаты клетки тайловой карты (X: столбец, Y: строка)
type Vec2 struct {
	X, Y int
}

// CellOf переводит пиксельные координаты в координаты клетки (деление с округлением вниз)
func CellOf(p Vec2Float, tileSize float64) Vec2 {
	return Vec2{
		X: int(math.Floor(p.X / tileSize)),
		Y: int(math.Floor(p.Y / tileSize)),
	}
}

// Origin возвращает пиксельные координаты левого верхнего угла клетки
func (v Vec2) Origin(tileSize float64) Vec2Float {
	return Vec2Float{X: float64(v.X) * tileSize, Y: float64(v.Y) * tileSize}
}
