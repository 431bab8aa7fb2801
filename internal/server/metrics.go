package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/echoes-hidden/internal/entity"
	"github.com/annel0/echoes-hidden/internal/game"
)

// GameMetrics собирает Prometheus-метрики игрового цикла.
//
// Метрики:
// * echoes_game_ticks_total — counter
// * echoes_game_suspicion — gauge, текущий уровень 0..100
// * echoes_game_reputation — gauge
// * echoes_game_guards{state} — gauge, число охранников в каждом состоянии
// * echoes_game_over_total{cause} — counter
// * echoes_game_tick_duration_seconds — histogram
type GameMetrics struct {
	ticks        prometheus.Counter
	suspicion    prometheus.Gauge
	reputation   prometheus.Gauge
	guards       *prometheus.GaugeVec
	gameOvers    *prometheus.CounterVec
	tickDuration prometheus.Histogram
}

// NewGameMetrics создаёт метрики и регистрирует их в reg (nil означает дефолтный регистр)
func NewGameMetrics(reg prometheus.Registerer) *GameMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &GameMetrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "echoes",
			Subsystem: "game",
			Name:      "ticks_total",
			Help:      "Количество выполненных тиков симуляции.",
		}),
		suspicion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "echoes",
			Subsystem: "game",
			Name:      "suspicion",
			Help:      "Текущий уровень подозрительности.",
		}),
		reputation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "echoes",
			Subsystem: "game",
			Name:      "reputation",
			Help:      "Текущая репутация игрока.",
		}),
		guards: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "echoes",
			Subsystem: "game",
			Name:      "guards",
			Help:      "Число охранников в каждом состоянии.",
		}, []string{"state"}),
		gameOvers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "echoes",
			Name:      "game_over_total",
			Help:      "Количество окончаний игры по причинам.",
		}, []string{"cause"}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "echoes",
			Subsystem: "game",
			Name:      "tick_duration_seconds",
			Help:      "Длительность одного тика.",
			Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		}),
	}

	reg.MustRegister(m.ticks, m.suspicion, m.reputation, m.guards, m.gameOvers, m.tickDuration)
	return m
}

// Observe обновляет метрики по итогам тика
func (m *GameMetrics) Observe(report game.TickReport, snap game.Snapshot, seconds float64) {
	if !report.Frozen {
		m.ticks.Inc()
		m.tickDuration.Observe(seconds)
	}
	m.suspicion.Set(snap.World.Suspicion)
	m.reputation.Set(snap.Player.Reputation)

	counts := map[entity.GuardState]int{
		entity.GuardPatrol: 0,
		entity.GuardAlert:  0,
		entity.GuardChase:  0,
	}
	for _, g := range snap.Guards {
		counts[g.State]++
	}
	for state, n := range counts {
		m.guards.WithLabelValues(state.String()).Set(float64(n))
	}
}

// GameOver учитывает окончание игры
func (m *GameMetrics) GameOver(cause string) {
	m.gameOvers.WithLabelValues(cause).Inc()
}
