package vec

import "math"

// Vec2Float представляет точку в пиксельном пространстве
type Vec2Float struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add складывает два вектора
func (v Vec2Float) Add(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub вычитает вектор
func (v Vec2Float) Sub(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul умножает вектор на скаляр
func (v Vec2Float) Mul(scalar float64) Vec2Float {
	return Vec2Float{X: v.X * scalar, Y: v.Y * scalar}
}

// Normalized возвращает нормализованный вектор
func (v Vec2Float) Normalized() Vec2Float {
	length := v.Length()
	if length == 0 {
		return Vec2Float{X: 0, Y: 0}
	}
	return Vec2Float{X: v.X / length, Y: v.Y / length}
}

// Length возвращает длину вектора
func (v Vec2Float) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// IsZero сообщает, что вектор нулевой
func (v Vec2Float) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// IsFinite проверяет, что обе координаты конечны (не NaN и не ±Inf)
func (v Vec2Float) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2Float) DistanceTo(other Vec2Float) float64 {
	return Distance(v, other)
}

// AngleTo возвращает направление (в радианах) от v к other
func (v Vec2Float) AngleTo(other Vec2Float) float64 {
	return Bearing(v, other)
}

// Heading возвращает направление самого вектора: 0 вправо, π/2 вниз
func (v Vec2Float) Heading() float64 {
	return math.Atan2(v.Y, v.X)
}

// Step сдвигает точку на length в направлении angle
func (v Vec2Float) Step(angle, length float64) Vec2Float {
	return Vec2Float{
		X: v.X + math.Cos(angle)*length,
		Y: v.Y + math.Sin(angle)*length,
	}
}
