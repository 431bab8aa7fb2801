package game

import (
	"github.com/annel0/echoes-hidden/internal/entity"
	"github.com/annel0/echoes-hidden/internal/mission"
	"github.com/annel0/echoes-hidden/internal/vec"
)

// PlayerView содержит данные игрока для отрисовки
type PlayerView struct {
	Position   vec.Vec2Float `json:"position"`
	Facing     float64       `json:"facing"`
	Reputation float64       `json:"reputation"`
	Inventory  []string      `json:"inventory"`
}

// WorldView содержит глобальное состояние для отрисовки
type WorldView struct {
	Suspicion float64 `json:"suspicion"`
	GameOver  bool    `json:"gameOver"`
}

// Snapshot представляет неизменяемый снимок для отрисовки и трансляции клиентам
type Snapshot struct {
	Tick     uint64                 `json:"tick"`
	Player   PlayerView             `json:"player"`
	Guards   []entity.GuardSnapshot `json:"guards"`
	World    WorldView              `json:"world"`
	Missions mission.State          `json:"missions"`
}

// Snapshot возвращает снимок текущего состояния. Срезы не разделяются с симуляцией.
func (s *Simulation) Snapshot() Snapshot {
	p := s.player.Snapshot()

	guards := make([]entity.GuardSnapshot, 0, len(s.guards))
	for _, g := range s.guards {
		guards = append(guards, g.Snapshot())
	}

	return Snapshot{
		Tick: s.tick,
		Player: PlayerView{
			Position:   p.Position,
			Facing:     p.Facing,
			Reputation: s.agg.Reputation(),
			Inventory:  p.Inventory,
		},
		Guards: guards,
		World: WorldView{
			Suspicion: s.agg.Suspicion(),
			GameOver:  s.agg.GameOver(),
		},
		Missions: s.missions.State(),
	}
}
