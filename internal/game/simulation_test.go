package game

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/annel0/echoes-hidden/internal/entity"
	"github.com/annel0/echoes-hidden/internal/events"
	"github.com/annel0/echoes-hidden/internal/meta"
	"github.com/annel0/echoes-hidden/internal/mission"
	"github.com/annel0/echoes-hidden/internal/vec"
	"github.com/annel0/echoes-hidden/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var playerSpawn = vec.Vec2Float{X: 200, Y: 200}

// arena строит открытую комнату 10×8 клеток по 40 px без препятствий внутри
func arena(t *testing.T, guards ...world.GuardSpawn) *world.Layout {
	t.Helper()
	m, err := world.ParseTileMap(40, []string{
		"############",
		"#..........#",
		"#..........#",
		"#..........#",
		"#..........#",
		"#..........#",
		"#..........#",
		"#..........#",
		"#..........#",
		"############",
	})
	require.NoError(t, err)

	return &world.Layout{
		Map:         m,
		PlayerSpawn: playerSpawn,
		Guards:      guards,
		NPCs: []world.NPCSpawn{
			{ID: "npc_informant", Name: "Shadow Broker", Role: "Informant", Position: vec.Vec2Float{X: 400, Y: 120}},
		},
	}
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newArenaSim(t *testing.T, guards ...world.GuardSpawn) (*Simulation, *events.Recorder) {
	t.Helper()
	rec := &events.Recorder{}
	sim := New(arena(t, guards...), DefaultConfig(), WithClock(fixedNow))
	sim.Events().Subscribe(rec.Emit)
	return sim, rec
}

func TestSimulation_CaptureAtThreshold(t *testing.T) {
	sim, rec := newArenaSim(t, world.GuardSpawn{ID: 1, Position: vec.Vec2Float{X: 175, Y: 200}})

	sim.SetSuspicion(65)
	r := sim.Tick(1, entity.Input{})
	assert.False(t, r.Captured, "Подозрительность 65 ниже порога поимки")
	assert.InDelta(t, 66, r.Suspicion, 1e-9)
	assert.Equal(t, entity.GuardChase, sim.Guards()[0].State())

	sim.SetSuspicion(70)
	r = sim.Tick(1, entity.Input{})
	assert.True(t, r.Captured)
	assert.True(t, sim.Aggregator().GameOver(), "Поимка оканчивает игру")

	require.Equal(t, 1, rec.Count(events.GameOver))
	for _, ev := range rec.Events() {
		if ev.Type == events.GameOver {
			assert.Equal(t, string(meta.CauseCapture), ev.Payload["cause"])
			assert.Equal(t, uint64(2), ev.Tick)
		}
	}
}

func TestSimulation_SuspicionMaxFreezesWorld(t *testing.T) {
	sim, rec := newArenaSim(t, world.GuardSpawn{ID: 1, Position: vec.Vec2Float{X: 100, Y: 200}})

	sim.SetSuspicion(99)
	r := sim.Tick(1, entity.Input{})
	require.True(t, r.Maxed)
	assert.Equal(t, meta.MaxSuspicion, r.Suspicion)
	assert.False(t, r.Captured, "Охранник слишком далеко для поимки")

	guardPos := sim.Guards()[0].Position
	for i := 0; i < 5; i++ {
		r = sim.Tick(1, entity.Input{Right: true})
		assert.True(t, r.Frozen, "После окончания игры мир заморожен")
	}

	assert.Equal(t, uint64(1), sim.TickCount())
	assert.Equal(t, guardPos, sim.Guards()[0].Position)
	assert.Equal(t, playerSpawn, sim.Player().Position)
	assert.Equal(t, 1, rec.Count(events.SuspicionMaxed), "Событие максимума ровно одно")
	assert.Equal(t, 1, rec.Count(events.GameOver))
}

func TestSimulation_GuardDeltasAreSummed(t *testing.T) {
	sim, _ := newArenaSim(t,
		world.GuardSpawn{ID: 1, Position: vec.Vec2Float{X: 100, Y: 200}},
		world.GuardSpawn{ID: 2, Position: vec.Vec2Float{X: 300, Y: 200}, Facing: math.Pi},
	)

	sim.SetSuspicion(10)
	r := sim.Tick(1, entity.Input{})
	assert.InDelta(t, 2, r.SuspicionDelta, 1e-9)
	assert.InDelta(t, 12, sim.Aggregator().Suspicion(), 1e-9)
}

func TestSimulation_DecayPerUnawareGuard(t *testing.T) {
	sim, _ := newArenaSim(t,
		world.GuardSpawn{ID: 1, Position: vec.Vec2Float{X: 60, Y: 60}, Facing: math.Pi},
		world.GuardSpawn{ID: 2, Position: vec.Vec2Float{X: 420, Y: 340}},
	)

	sim.SetSuspicion(10)
	sim.Tick(1, entity.Input{})
	assert.InDelta(t, 9.8, sim.Aggregator().Suspicion(), 1e-9, "Каждый не преследующий охранник снижает подозрительность")
}

func TestSimulation_PlayerMovesBeforeGuards(t *testing.T) {
	sim, _ := newArenaSim(t)

	r := sim.Tick(1, entity.Input{Right: true})
	assert.Equal(t, entity.MoveFull, r.Move)
	assert.Equal(t, vec.Vec2Float{X: 204, Y: 200}, sim.Player().Position)
	assert.Zero(t, sim.Player().Facing)

	r = sim.Tick(math.NaN(), entity.Input{Right: true})
	assert.Equal(t, entity.MoveNone, r.Move, "NaN шага времени считается нулём")
	assert.Equal(t, vec.Vec2Float{X: 204, Y: 200}, sim.Player().Position)
}

func TestSimulation_CueEventsCarryTick(t *testing.T) {
	sim, rec := newArenaSim(t, world.GuardSpawn{ID: 1, Position: vec.Vec2Float{X: 100, Y: 200}})

	sim.Tick(1, entity.Input{})
	sim.Tick(1, entity.Input{})

	evs := rec.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.GuardSpotted, evs[0].Type)
	assert.Equal(t, uint64(1), evs[0].Tick)
	assert.Equal(t, uint64(1), evs[0].Payload["guard"])
}

func TestSimulation_Reset(t *testing.T) {
	guardSpawn := vec.Vec2Float{X: 100, Y: 200}
	sim, rec := newArenaSim(t, world.GuardSpawn{ID: 1, Position: guardSpawn})

	for i := 0; i < 10; i++ {
		sim.Tick(1, entity.Input{Down: true, Right: true})
	}
	sim.ActivateMission(mission.Mission{ID: "mission_a", Title: "Retrieve Data Drive"})
	sim.CompleteMission()
	sim.ActivateMission(mission.Mission{ID: "mission_b"})
	sim.UpdateReputation(-20)
	sim.SetSuspicion(100)
	require.True(t, sim.Aggregator().GameOver())

	sim.Reset()

	snap := sim.Snapshot()
	assert.Equal(t, playerSpawn, snap.Player.Position)
	assert.Zero(t, snap.Player.Facing)
	assert.Equal(t, meta.DefaultReputation, snap.Player.Reputation)
	assert.Zero(t, snap.World.Suspicion)
	assert.False(t, snap.World.GameOver)
	assert.Nil(t, snap.Missions.Active)
	assert.Empty(t, snap.Missions.Completed, "Полный сброс очищает завершённые миссии")
	require.Len(t, snap.Guards, 1)
	assert.Equal(t, guardSpawn, snap.Guards[0].Position)
	assert.Equal(t, entity.GuardPatrol, snap.Guards[0].State)
	assert.Equal(t, 1, rec.Count(events.GameReset))

	r := sim.Tick(1, entity.Input{})
	assert.False(t, r.Frozen, "После сброса мир снова движется")
}

func TestSimulation_Interact(t *testing.T) {
	sim, _ := newArenaSim(t)

	_, ok := sim.Interact()
	assert.False(t, ok, "У точки появления нет NPC")

	sim.Player().Position = vec.Vec2Float{X: 380, Y: 130}
	npc, ok := sim.Interact()
	require.True(t, ok)
	assert.Equal(t, "npc_informant", npc.ID)

	sim.Player().Position = vec.Vec2Float{X: 350, Y: 120}
	_, ok = sim.Interact()
	assert.False(t, ok, "Ровно на дистанции 50 разговор недоступен")
}

func TestSimulation_ExportImportRoundTrip(t *testing.T) {
	sim, _ := newArenaSim(t, world.GuardSpawn{ID: 1, Position: vec.Vec2Float{X: 100, Y: 200}})

	for i := 0; i < 5; i++ {
		sim.Tick(1, entity.Input{Up: true})
	}
	sim.ActivateMission(mission.Mission{ID: "mission_a"})
	sim.CompleteMission()
	sim.UpdateReputation(15)
	sim.Player().Inventory = append(sim.Player().Inventory, "keycard")

	data, err := sim.MarshalSave()
	require.NoError(t, err)
	before := sim.Snapshot()

	sim.Reset()
	require.NoError(t, sim.Import(data))
	after := sim.Snapshot()

	assert.Equal(t, before.Player, after.Player)
	assert.Equal(t, before.World, after.World)
	assert.Equal(t, before.Missions, after.Missions)
	assert.Equal(t, before.Guards, after.Guards)
}

func TestSimulation_ImportShallowMerge(t *testing.T) {
	sim, rec := newArenaSim(t)
	sim.SetSuspicion(40)
	rec.Reset()

	require.NoError(t, sim.Import([]byte(`{"player":{"x":120,"inventory":["badge"]}}`)))

	assert.Equal(t, vec.Vec2Float{X: 120, Y: 200}, sim.Player().Position, "Отсутствующее поле y сохраняет значение")
	assert.Equal(t, []string{"badge"}, sim.Player().Inventory)
	assert.Equal(t, 40.0, sim.Aggregator().Suspicion(), "Отсутствующий раздел world сохраняет значения")
	assert.Equal(t, meta.DefaultReputation, sim.Aggregator().Reputation())
	assert.Empty(t, rec.Events(), "Загрузка не публикует событий")
}

func TestSimulation_ImportGuardEntryMergesByID(t *testing.T) {
	sim := NewDefault(WithClock(fixedNow))
	guards := sim.Guards()
	require.GreaterOrEqual(t, len(guards), 2)

	first := guards[0].Snapshot()
	second := guards[1].Snapshot()
	require.NotEqual(t, first.Position, second.Position)

	require.NoError(t, sim.Import([]byte(`{"player":{},"world":{"guards":[{"id":2,"state":"ALERT"}]}}`)))

	assert.Equal(t, entity.GuardAlert, guards[1].State(), "Состояние из записи применено")
	assert.Equal(t, second.Position, guards[1].Position, "Позиция охранника 2 берётся из его собственного снимка")
	assert.Equal(t, second.Facing, guards[1].Facing)
	assert.Equal(t, first, guards[0].Snapshot(), "Охранник 1 не затронут")
}

func TestSimulation_ImportGuardEntriesOutOfOrder(t *testing.T) {
	sim := NewDefault(WithClock(fixedNow))
	guards := sim.Guards()
	third := guards[2].Snapshot()

	require.NoError(t, sim.Import([]byte(`{"player":{},"world":{"guards":[
		{"id":3,"facing":1.5},
		{"state":"CHASE"},
		{"id":99,"position":{"x":1,"y":1}},
		{"id":1,"position":{"x":420,"y":610}}
	]}}`)))

	assert.Equal(t, vec.Vec2Float{X: 420, Y: 610}, guards[0].Position)
	assert.Equal(t, third.Position, guards[2].Position)
	assert.Equal(t, 1.5, guards[2].Facing)
	for _, g := range guards {
		assert.NotEqual(t, entity.GuardChase, g.State(), "Запись без ID пропускается")
	}
}

func TestSimulation_ImportCompletedMissions(t *testing.T) {
	sim, _ := newArenaSim(t)
	sim.ActivateMission(mission.Mission{ID: "mission_a", Title: "Первая"})
	sim.CompleteMission()
	sim.ActivateMission(mission.Mission{ID: "mission_b", Title: "Вторая"})
	sim.CompleteMission()

	require.NoError(t, sim.Import([]byte(`{"player":{},"missions":{"active":null}}`)))
	require.Len(t, sim.Missions().Completed(), 2, "Без списка completed история сохраняется")

	require.NoError(t, sim.Import([]byte(`{"player":{},"missions":{"completed":[{"id":"mission_c"}]}}`)))
	completed := sim.Missions().Completed()
	require.Len(t, completed, 1)
	assert.Equal(t, "mission_c", completed[0].ID)
	assert.Empty(t, completed[0].Title, "Запись не наследует поля миссии с тем же индексом")
}

func TestSimulation_ImportClampsValues(t *testing.T) {
	sim, _ := newArenaSim(t)

	require.NoError(t, sim.Import([]byte(`{"player":{"reputation":500},"world":{"suspicion":-3}}`)))
	assert.Equal(t, meta.MaxReputation, sim.Aggregator().Reputation())
	assert.Zero(t, sim.Aggregator().Suspicion())
}

func TestSimulation_ImportRejectsInvalid(t *testing.T) {
	inputs := map[string]string{
		"не JSON":      `{{{`,
		"без игрока":   `{"world":{"suspicion":5}}`,
		"игрок null":   `{"player":null}`,
		"игрок число":  `{"player":5}`,
		"массив":       `[]`,
		"неверный тип": `{"player":{"x":"left"}}`,
	}

	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			sim, _ := newArenaSim(t)
			sim.SetSuspicion(25)

			err := sim.Import([]byte(raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSave)
			assert.Equal(t, 25.0, sim.Aggregator().Suspicion(), "Отклонённое сохранение не меняет состояние")
			assert.Equal(t, playerSpawn, sim.Player().Position)
		})
	}
}

func TestSimulation_SnapshotIsJSON(t *testing.T) {
	sim := NewDefault(WithClock(fixedNow))
	sim.Tick(1, entity.Input{})

	data, err := json.Marshal(sim.Snapshot())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "player")
	assert.Contains(t, decoded, "guards")
	assert.Len(t, decoded["guards"], 4)
}
