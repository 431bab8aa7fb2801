package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/annel0/echoes-hidden/internal/entity"
	"github.com/annel0/echoes-hidden/internal/meta"
	"github.com/annel0/echoes-hidden/internal/mission"
	"github.com/annel0/echoes-hidden/internal/vec"
)

// ErrInvalidSave возвращается, если сохранение повреждено или не содержит игрока
var ErrInvalidSave = errors.New("некорректное сохранение")

// SavedPlayer описывает раздел игрока в сохранении
type SavedPlayer struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Speed      float64  `json:"speed"`
	Reputation float64  `json:"reputation"`
	Inventory  []string `json:"inventory"`
	Direction  float64  `json:"direction"`
}

// SavedWorld описывает раздел мира в сохранении
type SavedWorld struct {
	Suspicion float64                `json:"suspicion"`
	GameOver  bool                   `json:"gameOver"`
	Guards    []entity.GuardSnapshot `json:"guards"`
}

// SaveState описывает документ сохранения. Состояние интерфейса не сохраняется.
type SaveState struct {
	Player   *SavedPlayer  `json:"player"`
	World    SavedWorld    `json:"world"`
	Missions mission.State `json:"missions"`
	SavedAt  int64         `json:"savedAt"` // Unix-время в миллисекундах
}

// Export возвращает документ сохранения для текущего состояния
func (s *Simulation) Export() SaveState {
	p := s.player.Snapshot()

	guards := make([]entity.GuardSnapshot, 0, len(s.guards))
	for _, g := range s.guards {
		guards = append(guards, g.Snapshot())
	}

	return SaveState{
		Player: &SavedPlayer{
			X:          p.Position.X,
			Y:          p.Position.Y,
			Speed:      p.Speed,
			Reputation: s.agg.Reputation(),
			Inventory:  p.Inventory,
			Direction:  p.Facing,
		},
		World: SavedWorld{
			Suspicion: s.agg.Suspicion(),
			GameOver:  s.agg.GameOver(),
			Guards:    guards,
		},
		Missions: s.missions.State(),
		SavedAt:  s.now().UnixMilli(),
	}
}

// MarshalSave сериализует текущее состояние в JSON
func (s *Simulation) MarshalSave() ([]byte, error) {
	data, err := json.Marshal(s.Export())
	if err != nil {
		return nil, fmt.Errorf("сериализация сохранения: %w", err)
	}
	return data, nil
}

// savedLists — списки документа в сыром виде. Элементы списков нельзя
// декодировать поверх текущих: json пишет их по индексу, а не по ID.
type savedLists struct {
	World struct {
		Guards []json.RawMessage `json:"guards"`
	} `json:"world"`
	Missions struct {
		Completed json.RawMessage `json:"completed"`
	} `json:"missions"`
}

// Import загружает сохранение поверх текущего состояния.
// Отсутствующие разделы и поля сохраняют текущие значения; документ без
// объекта player отклоняется. Записи охранников сливаются по ID с текущим
// состоянием того же охранника, список завершённых миссий заменяется целиком.
// События не публикуются.
func (s *Simulation) Import(raw []byte) error {
	var head struct {
		Player json.RawMessage `json:"player"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	if p := bytes.TrimSpace(head.Player); len(p) == 0 || p[0] != '{' {
		return fmt.Errorf("%w: отсутствует раздел player", ErrInvalidSave)
	}

	// Декодируем поверх текущего состояния: так поля, которых нет в документе, не меняются
	merged := s.Export()
	completed := merged.Missions.Completed
	merged.World.Guards = nil
	merged.Missions.Completed = nil
	if err := json.Unmarshal(raw, &merged); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}

	var lists savedLists
	if err := json.Unmarshal(raw, &lists); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	if lists.Missions.Completed == nil {
		merged.Missions.Completed = completed
	}

	s.apply(merged, lists.World.Guards)
	return nil
}

// apply применяет документ сохранения, отбрасывая некорректные числа
func (s *Simulation) apply(st SaveState, guards []json.RawMessage) {
	p := st.Player

	pos := vec.Vec2Float{X: p.X, Y: p.Y}
	if pos.IsFinite() {
		s.player.Position = pos
	}
	if isFinite(p.Direction) {
		s.player.Facing = p.Direction
	}
	if isFinite(p.Speed) && p.Speed >= 0 {
		s.player.Speed = p.Speed
	}
	s.player.Inventory = append([]string{}, p.Inventory...)

	s.agg.Restore(meta.State{
		Suspicion:  st.World.Suspicion,
		GameOver:   st.World.GameOver,
		Reputation: p.Reputation,
	})

	for _, entry := range guards {
		s.restoreGuard(entry)
	}

	s.missions.Restore(st.Missions)
}

// restoreGuard накладывает запись охранника на его собственный снимок.
// Записи без ID или с неизвестным ID пропускаются.
func (s *Simulation) restoreGuard(entry json.RawMessage) {
	var key struct {
		ID *uint64 `json:"id"`
	}
	if err := json.Unmarshal(entry, &key); err != nil || key.ID == nil {
		return
	}

	for _, g := range s.guards {
		if g.ID != *key.ID {
			continue
		}
		snap := g.Snapshot()
		if err := json.Unmarshal(entry, &snap); err == nil {
			g.Restore(snap)
		}
		return
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
