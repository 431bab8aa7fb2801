package physics

import (
	"github.com/annel0/echoes-hidden/internal/vec"
)

// BoxCollider представляет прямоугольный коллайдер, выровненный по осям.
// Размеры задаются полуширинами в пикселях относительно центра.
type BoxCollider struct {
	HalfWidth  float64
	HalfHeight float64
}

// NewBoxCollider создаёт новый коллайдер с указанными полуразмерами
func NewBoxCollider(halfWidth, halfHeight float64) *BoxCollider {
	return &BoxCollider{
		HalfWidth:  halfWidth,
		HalfHeight: halfHeight,
	}
}

// GetCollisionPoints возвращает четыре угла коллайдера для проверки проходимости.
// Это выборка по углам, а не непрерывная проверка: проходы уже коллайдера не ловятся.
func GetCollisionPoints(center vec.Vec2Float, collider *BoxCollider) []vec.Vec2Float {
	return []vec.Vec2Float{
		{X: center.X - collider.HalfWidth, Y: center.Y - collider.HalfHeight}, // Левый верхний
		{X: center.X + collider.HalfWidth, Y: center.Y - collider.HalfHeight}, // Правый верхний
		{X: center.X - collider.HalfWidth, Y: center.Y + collider.HalfHeight}, // Левый нижний
		{X: center.X + collider.HalfWidth, Y: center.Y + collider.HalfHeight}, // Правый нижний
	}
}

// CanMoveToPosition проверяет, может ли коллайдер занять указанную позицию.
// pointChecker сообщает, проходима ли точка в пиксельных координатах.
func CanMoveToPosition(center vec.Vec2Float, collider *BoxCollider, pointChecker func(vec.Vec2Float) bool) bool {
	for _, point := range GetCollisionPoints(center, collider) {
		if !pointChecker(point) {
			// Хотя бы один угол в стене, позиция занята
			return false
		}
	}

	return true
}
