package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/echoes-hidden/internal/api"
	"github.com/annel0/echoes-hidden/internal/config"
	"github.com/annel0/echoes-hidden/internal/dialogue"
	"github.com/annel0/echoes-hidden/internal/eventbus"
	"github.com/annel0/echoes-hidden/internal/game"
	"github.com/annel0/echoes-hidden/internal/logging"
	"github.com/annel0/echoes-hidden/internal/observability"
	"github.com/annel0/echoes-hidden/internal/server"
	"github.com/annel0/echoes-hidden/internal/storage"
	"github.com/annel0/echoes-hidden/internal/world"
)

func main() {
	configPath := flag.String("config", "", "Путь к YAML-конфигурации (по умолчанию $GAME_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	logging.Configure(logging.Options{
		Dir:          cfg.Logging.Dir,
		ConsoleLevel: level,
		FileLevel:    logging.DEBUG,
		JSONConsole:  !cfg.Logging.Console,
	})
	componentLevels, err := logging.ParseComponentLevels(cfg.Logging.Components)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	logging.GetLoggerManager().SetComponentLevels(componentLevels)

	// Инициализируем систему логирования
	if err := logging.InitDefaultLogger(logging.ComponentServer); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	if err := run(cfg); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logging.Info("🎮 Запуск Echoes of the Hidden...")

	// === ТЕЛЕМЕТРИЯ ===
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, observability.Options{
			ServiceName: cfg.Telemetry.ServiceName,
			Version:     api.Version,
			Endpoint:    cfg.Telemetry.Endpoint,
			Insecure:    cfg.Telemetry.Insecure,
			SampleRatio: cfg.Telemetry.SampleRatio,
		})
		if err != nil {
			logging.Warn("⚠️ Телеметрия отключена: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logging.Warn("⚠️ Ошибка остановки телеметрии: %v", err)
				}
			}()
		}
	}

	// === ШИНА СОБЫТИЙ ===
	bus, err := openEventBus(cfg.EventBus)
	if err != nil {
		return err
	}
	defer bus.Close()

	busLogger := logging.GetEventBusLogger()
	if _, err := eventbus.StartLoggingListener(bus, busLogger); err != nil {
		return fmt.Errorf("подписка логгера событий: %w", err)
	}

	exporter := eventbus.NewMetricsExporter(bus, nil)
	exporter.Start(5 * time.Second)
	defer exporter.Stop()

	// === ХРАНИЛИЩЕ ===
	store, err := storage.Open(storage.Options{
		Backend:   cfg.Storage.Backend,
		Path:      cfg.Storage.Path,
		RedisAddr: cfg.Storage.RedisAddr,
		RedisDB:   cfg.Storage.RedisDB,
		Compress:  cfg.Storage.Compress,
	})
	if err != nil {
		return fmt.Errorf("открытие хранилища: %w", err)
	}
	defer store.Close()
	logging.Info("💾 Хранилище сохранений: %s", cfg.Storage.Backend)

	// === СИМУЛЯЦИЯ ===
	sim := game.New(world.NewCompoundLayout(), cfg.Game.Simulation())

	bridge := eventbus.NewBridge(bus, cfg.Telemetry.ServiceName, cfg.EventBus.Capacity, busLogger)
	detach := bridge.Attach(sim.Events())
	defer detach()

	bridgeDone := make(chan struct{})
	bridgeCtx, stopBridge := context.WithCancel(ctx)
	go func() {
		bridge.Run(bridgeCtx)
		close(bridgeDone)
	}()

	gameServer := server.NewGameServer(sim, cfg.Game.TickRate,
		server.WithLogger(logging.GetGameLogger()),
		server.WithMetrics(server.NewGameMetrics(nil)),
	)
	if err := gameServer.Start(ctx); err != nil {
		return err
	}

	// === REST API ===
	limiter := dialogue.NewRateLimiter(cfg.Dialogue.RateLimit, cfg.Dialogue.Window())
	go limiter.RunCleanup(ctx, cfg.Dialogue.Window())

	restPort := cfg.Server.GetRESTPort()
	restServer := api.NewRestServer(api.Config{
		Port:        fmt.Sprintf(":%d", restPort),
		Game:        gameServer,
		Store:       store,
		DefaultSlot: cfg.Storage.Slot,
		Responder:   dialogue.NewMockResponder(),
		Limiter:     limiter,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- restServer.Start()
	}()

	// Отдельный порт метрик для Prometheus scrape
	metricsSrv := eventbus.StartHTTP(fmt.Sprintf(":%d", cfg.Server.GetMetricsPort()), nil)

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   🌐 REST API: http://localhost:%d", restPort)
	logging.Info("   🔌 WebSocket: ws://localhost:%d/ws", restPort)
	logging.Info("   📈 Метрики: http://localhost:%d/metrics", cfg.Server.GetMetricsPort())

	// Канал для получения сигналов ОС
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info("📡 Получен сигнал %v, завершение работы...", sig)
	case err := <-errCh:
		if err != nil {
			logging.Error("❌ REST API остановился: %v", err)
		}
	}

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := restServer.Stop(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки сервера метрик: %v", err)
	}

	gameServer.Stop()
	stopBridge()
	<-bridgeDone

	if dropped := bridge.Dropped(); dropped > 0 {
		logging.Warn("⚠️ Отброшено событий при переполнении моста: %d", dropped)
	}

	logging.Info("👋 Сервер успешно остановлен")
	return nil
}

// openEventBus создаёт шину событий по конфигурации
func openEventBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	switch cfg.Backend {
	case "", "memory":
		return eventbus.NewMemoryBus(cfg.Capacity), nil
	case "jetstream":
		bus, err := eventbus.NewJetStreamBus(eventbus.JetStreamConfig{
			URL:       cfg.URL,
			Stream:    cfg.Stream,
			Retention: time.Duration(cfg.Retention) * time.Hour,
			Source:    "server",
			Logger:    logging.GetEventBusLogger(),
		})
		if err != nil {
			return nil, fmt.Errorf("подключение к JetStream: %w", err)
		}
		logging.Info("📨 Шина событий: JetStream %s (stream=%s)", cfg.URL, cfg.Stream)
		return bus, nil
	default:
		return nil, fmt.Errorf("неизвестная шина событий: %q", cfg.Backend)
	}
}
