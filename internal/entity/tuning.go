package entity

import "math"

// GuardTuning задаёт параметры обнаружения и движения охранника
type GuardTuning struct {
	FOV               float64 // Полная ширина конуса обзора, радианы
	ViewRange         float64 // Дальность обзора, пиксели
	PatrolSpeed       float64 // Пикселей за единицу времени тика
	ChaseSpeed        float64 // Пикселей за единицу времени тика
	WaypointTolerance float64 // Радиус достижения точки маршрута
	CaptureRadius     float64 // Радиус поимки
	CaptureThreshold  float64 // Минимальная подозрительность для поимки
	SuspicionRateUp   float64 // Рост подозрительности при обнаружении
	SuspicionRateDown float64 // Спад подозрительности, когда игрока не видно
}

// DefaultGuardTuning возвращает стандартные параметры охранника
func DefaultGuardTuning() GuardTuning {
	return GuardTuning{
		FOV:               math.Pi / 3, // 60°
		ViewRange:         200,
		PatrolSpeed:       1.5,
		ChaseSpeed:        3,
		WaypointTolerance: 5,
		CaptureRadius:     30,
		CaptureThreshold:  70,
		SuspicionRateUp:   1,
		SuspicionRateDown: 0.1, // На порядок медленнее роста
	}
}

// PlayerTuning задаёт параметры персонажа игрока
type PlayerTuning struct {
	Speed      float64 // Пикселей за единицу времени тика
	HalfWidth  float64
	HalfHeight float64
}

// DefaultPlayerTuning возвращает стандартные параметры игрока
func DefaultPlayerTuning() PlayerTuning {
	return PlayerTuning{
		Speed:      4,
		HalfWidth:  12,
		HalfHeight: 12,
	}
}

// sanitizeDelta приводит шаг времени к конечному неотрицательному значению
func sanitizeDelta(delta float64) float64 {
	if math.IsNaN(delta) || math.IsInf(delta, 0) || delta < 0 {
		return 0
	}
	return delta
}
