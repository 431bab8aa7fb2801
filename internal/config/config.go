package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/annel0/echoes-hidden/internal/entity"
	"github.com/annel0/echoes-hidden/internal/game"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	Game      GameConfig      `yaml:"game"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Dialogue  DialogueConfig  `yaml:"dialogue"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GameConfig содержит параметры симуляции. Скорости и темпы заданы в единицах одного кадра 60 Гц.
type GameConfig struct {
	TickRate          int     `yaml:"tick_rate"`
	FOVDegrees        float64 `yaml:"fov_degrees"`
	ViewRange         float64 `yaml:"view_range"`
	PatrolSpeed       float64 `yaml:"patrol_speed"`
	ChaseSpeed        float64 `yaml:"chase_speed"`
	WaypointTolerance float64 `yaml:"waypoint_tolerance"`
	CaptureRadius     float64 `yaml:"capture_radius"`
	CaptureThreshold  float64 `yaml:"capture_threshold"`
	SuspicionRateUp   float64 `yaml:"suspicion_rate_up"`
	SuspicionRateDown float64 `yaml:"suspicion_rate_down"`
	PlayerSpeed       float64 `yaml:"player_speed"`
	PlayerHalfExtent  float64 `yaml:"player_half_extent"`
	InteractionRange  float64 `yaml:"interaction_range"`
}

type ServerConfig struct {
	RESTPort    int `yaml:"rest_port"`
	MetricsPort int `yaml:"metrics_port"`
}

type StorageConfig struct {
	Backend   string `yaml:"backend"` // memory | badger | redis
	Path      string `yaml:"path"`
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
	Compress  bool   `yaml:"compress"`
	Slot      string `yaml:"slot"`
}

type EventBusConfig struct {
	Backend   string `yaml:"backend"` // memory | jetstream
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
	Capacity  int    `yaml:"capacity"`
}

type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Endpoint    string  `yaml:"endpoint"` // host:port OTLP HTTP
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type DialogueConfig struct {
	RateLimit     int `yaml:"rate_limit"`
	WindowSeconds int `yaml:"window_seconds"`
}

type LoggingConfig struct {
	Level      string            `yaml:"level"`
	Dir        string            `yaml:"dir"`
	Console    bool              `yaml:"console"`
	Components map[string]string `yaml:"components"` // Уровни консоли по компонентам
}

// Default возвращает встроенные значения по умолчанию
func Default() *Config {
	return &Config{
		Game: GameConfig{
			TickRate:          60,
			FOVDegrees:        60,
			ViewRange:         200,
			PatrolSpeed:       1.5,
			ChaseSpeed:        3,
			WaypointTolerance: 5,
			CaptureRadius:     30,
			CaptureThreshold:  70,
			SuspicionRateUp:   1,
			SuspicionRateDown: 0.1,
			PlayerSpeed:       4,
			PlayerHalfExtent:  12,
			InteractionRange:  50,
		},
		Storage: StorageConfig{
			Backend: "memory",
			Path:    "data/saves",
			Slot:    "default",
		},
		EventBus: EventBusConfig{
			Backend:   "memory",
			Stream:    "ECHOES",
			Retention: 24,
			Capacity:  1024,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "echoes-server",
		},
		Dialogue: DialogueConfig{
			RateLimit:     10,
			WindowSeconds: 60,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Dir:     "logs",
			Console: true,
		},
	}
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "GAME_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "GAME_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Window возвращает окно ограничения частоты запросов к диалогам
func (d DialogueConfig) Window() time.Duration {
	return time.Duration(d.WindowSeconds) * time.Second
}

// TickInterval возвращает период игрового цикла
func (g GameConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(g.TickRate)
}

// Simulation переводит параметры в конфигурацию симуляции
func (g GameConfig) Simulation() game.Config {
	return game.Config{
		Guard: entity.GuardTuning{
			FOV:               g.FOVDegrees * math.Pi / 180,
			ViewRange:         g.ViewRange,
			PatrolSpeed:       g.PatrolSpeed,
			ChaseSpeed:        g.ChaseSpeed,
			WaypointTolerance: g.WaypointTolerance,
			CaptureRadius:     g.CaptureRadius,
			CaptureThreshold:  g.CaptureThreshold,
			SuspicionRateUp:   g.SuspicionRateUp,
			SuspicionRateDown: g.SuspicionRateDown,
		},
		Player: entity.PlayerTuning{
			Speed:      g.PlayerSpeed,
			HalfWidth:  g.PlayerHalfExtent,
			HalfHeight: g.PlayerHalfExtent,
		},
		InteractionRange: g.InteractionRange,
	}
}

// Validate проверяет параметры симуляции
func (g GameConfig) Validate() error {
	var errs []error

	positive := map[string]float64{
		"view_range":         g.ViewRange,
		"patrol_speed":       g.PatrolSpeed,
		"chase_speed":        g.ChaseSpeed,
		"waypoint_tolerance": g.WaypointTolerance,
		"player_speed":       g.PlayerSpeed,
		"player_half_extent": g.PlayerHalfExtent,
	}
	for name, v := range positive {
		if !(v > 0) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s должен быть положительным, получено %v", name, v))
		}
	}

	if g.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate должен быть положительным, получено %d", g.TickRate))
	}
	if !(g.FOVDegrees > 0 && g.FOVDegrees <= 360) {
		errs = append(errs, fmt.Errorf("fov_degrees должен лежать в (0, 360], получено %v", g.FOVDegrees))
	}
	if g.CaptureRadius < 0 || g.InteractionRange < 0 {
		errs = append(errs, errors.New("capture_radius и interaction_range не могут быть отрицательными"))
	}
	if g.CaptureThreshold < 0 || g.CaptureThreshold > 100 {
		errs = append(errs, fmt.Errorf("capture_threshold должен лежать в [0, 100], получено %v", g.CaptureThreshold))
	}
	if g.SuspicionRateUp < 0 || g.SuspicionRateDown < 0 {
		errs = append(errs, errors.New("темпы подозрительности не могут быть отрицательными"))
	}

	return errors.Join(errs...)
}

// Validate проверяет всю конфигурацию
func (c *Config) Validate() error {
	var errs []error
	if err := c.Game.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("game: %w", err))
	}

	switch c.Storage.Backend {
	case "memory", "badger", "redis":
	default:
		errs = append(errs, fmt.Errorf("storage: неизвестный backend %q", c.Storage.Backend))
	}
	if c.Storage.Backend == "redis" && c.Storage.RedisAddr == "" {
		errs = append(errs, errors.New("storage: для redis требуется redis_addr"))
	}

	switch c.EventBus.Backend {
	case "memory", "jetstream":
	default:
		errs = append(errs, fmt.Errorf("eventbus: неизвестный backend %q", c.EventBus.Backend))
	}

	if c.Dialogue.RateLimit <= 0 || c.Dialogue.WindowSeconds <= 0 {
		errs = append(errs, errors.New("dialogue: rate_limit и window_seconds должны быть положительными"))
	}

	return errors.Join(errs...)
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать путь из ENV GAME_CONFIG; если и он пуст, возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("GAME_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан, используем дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("проверка конфигурации %s: %w", path, err)
	}

	return cfg, nil
}
