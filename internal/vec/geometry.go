package vec

import "math"

// Distance возвращает евклидово расстояние между точками.
// Симметрична и равна нулю только для совпадающих точек.
func Distance(a, b Vec2Float) float64 {
	return b.Sub(a).Length()
}

// Bearing возвращает угол от from к to в диапазоне (-π, π] по соглашению atan2:
// 0 соответствует оси +X (вправо), +π/2 оси +Y (вниз в экранных координатах).
func Bearing(from, to Vec2Float) float64 {
	return to.Sub(from).Heading()
}

// NormalizeAngle приводит угол в полуинтервал (-π, π].
// Оборачивание симметрично в обе стороны, поэтому конусы через границу ±π работают.
func NormalizeAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	if math.Abs(a) > 4*math.Pi {
		a = math.Mod(a, 2*math.Pi)
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// InCone проверяет, находится ли target внутри конуса обзора с вершиной origin.
//
// Параметры:
//
//	facing - направление конуса (радианы)
//	fov    - полная угловая ширина конуса (радианы)
//	rng    - дальность обзора в пикселях
//
// Точка, совпадающая с вершиной, всегда считается видимой независимо от направления.
func InCone(origin, target Vec2Float, facing, fov, rng float64) bool {
	dist := Distance(origin, target)
	if dist > rng {
		return false
	}
	if dist == 0 {
		return true
	}

	diff := NormalizeAngle(Bearing(origin, target) - facing)
	return math.Abs(diff) <= fov/2
}
