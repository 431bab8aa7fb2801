package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/echoes-hidden/internal/entity"
	"github.com/annel0/echoes-hidden/internal/game"
	"github.com/annel0/echoes-hidden/internal/logging"
	"github.com/annel0/echoes-hidden/internal/vec"
	"github.com/annel0/echoes-hidden/internal/world"
)

func newTestSim(t *testing.T, guards ...world.GuardSpawn) *game.Simulation {
	t.Helper()
	m, err := world.ParseTileMap(40, []string{
		"##########",
		"#........#",
		"#........#",
		"#........#",
		"#........#",
		"#........#",
		"##########",
	})
	require.NoError(t, err)

	return game.New(&world.Layout{
		Map:         m,
		PlayerSpawn: vec.Vec2Float{X: 200, Y: 140},
		Guards:      guards,
	}, game.DefaultConfig())
}

func quietLogger() *logging.Logger {
	return logging.NewWriterLogger("server", &bytes.Buffer{}, logging.ERROR)
}

func TestGameServer_StepAppliesInput(t *testing.T) {
	srv := NewGameServer(newTestSim(t), 60, WithLogger(quietLogger()))

	srv.SetInput(entity.Input{Right: true})
	r := srv.Step()
	assert.Equal(t, uint64(1), r.Tick)
	assert.Equal(t, entity.MoveFull, r.Move)

	snap := srv.Snapshot()
	assert.InDelta(t, 204, snap.Player.Position.X, 1e-9, "Скорость 4 px за кадр")
	assert.Equal(t, r, srv.LastReport())

	srv.SetInput(entity.Input{})
	srv.Step()
	assert.InDelta(t, 204, srv.Snapshot().Player.Position.X, 1e-9, "Без ввода игрок стоит")
}

func TestGameServer_FrozenAfterGameOver(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewGameMetrics(reg)
	srv := NewGameServer(newTestSim(t), 60, WithLogger(quietLogger()), WithMetrics(metrics))

	srv.Step()
	srv.WithSimulation(func(sim *game.Simulation) {
		sim.SetSuspicion(100)
	})

	r := srv.Step()
	assert.True(t, r.Frozen, "После окончания игры мир заморожен")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ticks), "Замороженный тик не считается")
	assert.Equal(t, 100.0, testutil.ToFloat64(metrics.suspicion))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.gameOvers.WithLabelValues("suspicion")))

	srv.WithSimulation(func(sim *game.Simulation) { sim.Reset() })
	r = srv.Step()
	assert.False(t, r.Frozen)
}

func TestGameMetrics_GuardStates(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewGameMetrics(reg)
	sim := newTestSim(t,
		world.GuardSpawn{ID: 1, Position: vec.Vec2Float{X: 240, Y: 140}, Facing: math.Pi},
		world.GuardSpawn{ID: 2, Position: vec.Vec2Float{X: 60, Y: 60}, Facing: math.Pi},
	)
	srv := NewGameServer(sim, 60, WithLogger(quietLogger()), WithMetrics(metrics))

	srv.Step()
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.guards.WithLabelValues("CHASE")), "Охранник рядом видит игрока")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.guards.WithLabelValues("PATROL")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.guards.WithLabelValues("ALERT")))
}

func TestGameServer_StartStop(t *testing.T) {
	srv := NewGameServer(newTestSim(t), 120, WithLogger(quietLogger()))
	assert.Equal(t, time.Second/120, srv.TickInterval())

	require.NoError(t, srv.Start(context.Background()))
	assert.ErrorIs(t, srv.Start(context.Background()), ErrAlreadyRunning)

	require.Eventually(t, func() bool {
		return srv.Snapshot().Tick >= 3
	}, 2*time.Second, 5*time.Millisecond, "Цикл продвигает симуляцию")

	srv.Stop()
	stopped := srv.Snapshot().Tick
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, srv.Snapshot().Tick, "После остановки тики не идут")

	srv.Stop()
	assert.ErrorIs(t, srv.Start(context.Background()), ErrStopped)
}

func TestHub_StreamsSnapshotsAndAcceptsInput(t *testing.T) {
	srv := NewGameServer(newTestSim(t), 60, WithLogger(quietLogger()))
	require.NoError(t, srv.Start(context.Background()))
	defer srv.Stop()

	ts := httptest.NewServer(httpHandler(srv.Hub()))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	for msg.Type != "snapshot" {
		require.NoError(t, conn.ReadJSON(&msg))
	}

	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(msg.Data, &snap))
	assert.NotZero(t, snap.Tick)

	require.NoError(t, conn.WriteJSON(Message{Type: "input", Input: &entity.Input{Up: true}}))
	require.Eventually(t, func() bool {
		return srv.Input().Up
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, srv.Hub().ClientCount())
}
