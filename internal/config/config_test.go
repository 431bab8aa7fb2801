package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/annel0/echoes-hidden/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_MatchesSimulationDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	sim := cfg.Game.Simulation()
	want := game.DefaultConfig()

	assert.InDelta(t, want.Guard.FOV, sim.Guard.FOV, 1e-12, "60° = π/3")
	sim.Guard.FOV = want.Guard.FOV
	assert.Equal(t, want, sim)
	assert.Equal(t, time.Second/60, cfg.Game.TickInterval())
	assert.Equal(t, time.Minute, cfg.Dialogue.Window())
}

func TestLoad_EmptyPathWithoutEnv(t *testing.T) {
	t.Setenv("GAME_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg, "Без файла возвращаются значения по умолчанию")
}

func TestLoad_OverlaysFile(t *testing.T) {
	path := writeConfig(t, `
game:
  chase_speed: 4.5
  fov_degrees: 90
storage:
  backend: badger
  path: /tmp/echoes
server:
  rest_port: 9000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4.5, cfg.Game.ChaseSpeed)
	assert.InDelta(t, math.Pi/2, cfg.Game.Simulation().Guard.FOV, 1e-12)
	assert.Equal(t, 1.5, cfg.Game.PatrolSpeed, "Не указанные поля берутся из значений по умолчанию")
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.Equal(t, 9000, cfg.Server.GetRESTPort())
}

func TestLoad_FromEnv(t *testing.T) {
	path := writeConfig(t, "dialogue:\n  rate_limit: 3\n")
	t.Setenv("GAME_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Dialogue.RateLimit)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err, "Отсутствующий файл")

	_, err = Load(writeConfig(t, "game: [1, 2"))
	assert.Error(t, err, "Некорректный YAML")

	_, err = Load(writeConfig(t, "game:\n  chase_speed: -1\n"))
	assert.Error(t, err, "Отрицательная скорость")

	_, err = Load(writeConfig(t, "storage:\n  backend: redis\n"))
	assert.Error(t, err, "Redis без адреса")
}

func TestGameConfig_Validate(t *testing.T) {
	g := Default().Game
	g.ViewRange = 0
	g.TickRate = 0
	g.FOVDegrees = 400
	g.CaptureThreshold = 120

	err := g.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "view_range")
	assert.Contains(t, err.Error(), "tick_rate")
	assert.Contains(t, err.Error(), "fov_degrees")
	assert.Contains(t, err.Error(), "capture_threshold")

	g = Default().Game
	g.PatrolSpeed = math.NaN()
	assert.Error(t, g.Validate(), "NaN отклоняется")
}

func TestServerConfig_PortFallback(t *testing.T) {
	s := ServerConfig{}

	t.Setenv("GAME_REST_PORT", "")
	assert.Equal(t, 8088, s.GetRESTPort())

	t.Setenv("GAME_REST_PORT", "9100")
	assert.Equal(t, 9100, s.GetRESTPort())

	t.Setenv("GAME_METRICS_PORT", "not-a-port")
	assert.Equal(t, 2112, s.GetMetricsPort())

	s.RESTPort = 7000
	assert.Equal(t, 7000, s.GetRESTPort(), "Значение из конфига важнее переменной окружения")
}
