// Package api предоставляет REST API игрового сервера поверх gin.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/echoes-hidden/internal/dialogue"
	"github.com/annel0/echoes-hidden/internal/logging"
	"github.com/annel0/echoes-hidden/internal/middleware"
	"github.com/annel0/echoes-hidden/internal/server"
	"github.com/annel0/echoes-hidden/internal/storage"
)

// Version задаёт версию API, отдаётся в /api/server
const Version = "v0.3.0"

// RestServer представляет REST API сервер
type RestServer struct {
	router    *gin.Engine
	http      *http.Server
	game      *server.GameServer
	store     storage.SaveStore
	slot      string
	responder dialogue.Responder
	limiter   *dialogue.RateLimiter
	metrics   *ServerMetrics
	logger    *logging.Logger
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port        string                // адрес для запуска сервера, ":8088"
	Game        *server.GameServer    // игровой цикл
	Store       storage.SaveStore     // хранилище сохранений
	DefaultSlot string                // слот по умолчанию для save/load
	Responder   dialogue.Responder    // генератор ответов NPC
	Limiter     *dialogue.RateLimiter // ограничитель /api/chat
	Registerer  prometheus.Registerer // nil означает дефолтный регистр
	Gatherer    prometheus.Gatherer   // nil означает дефолтный регистр
	Logger      *logging.Logger
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.DefaultSlot == "" {
		config.DefaultSlot = "default"
	}
	if config.Store == nil {
		config.Store = storage.NewMemorySaveStore()
	}
	if config.Responder == nil {
		config.Responder = dialogue.NewMockResponder()
	}
	if config.Limiter == nil {
		config.Limiter = dialogue.NewRateLimiter(10, time.Minute)
	}
	if config.Logger == nil {
		config.Logger = logging.GetAPILogger()
	}

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware("echoes_api"))

	loggerMw := middleware.NewRequestLogger(config.Logger)
	router.Use(loggerMw.Handler())

	promMw := middleware.NewPrometheusMiddleware("echoes_api", config.Registerer)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Gatherer)

	rs := &RestServer{
		router:    router,
		game:      config.Game,
		store:     config.Store,
		slot:      config.DefaultSlot,
		responder: config.Responder,
		limiter:   config.Limiter,
		metrics:   NewServerMetrics(),
		logger:    config.Logger,
	}
	rs.http = &http.Server{
		Addr:              config.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Настраиваем маршруты
	rs.setupRoutes()

	return rs
}

// Router возвращает gin.Engine (для тестов и встраивания)
func (rs *RestServer) Router() *gin.Engine { return rs.router }

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.Use(corsMiddleware())

	rs.router.GET("/health", rs.handleHealth)
	rs.router.GET("/ws", gin.WrapF(rs.game.Hub().HandleConnection))

	api := rs.router.Group("/api")
	{
		api.GET("/health", rs.handleHealth)
		api.GET("/server", rs.handleServerInfo)

		// Состояние и управление
		api.GET("/state", rs.handleState)
		api.POST("/input", rs.handleInput)
		api.GET("/interact", rs.handleInteract)
		api.POST("/reset", rs.handleReset)

		// Диалоги и мета-состояние
		api.POST("/chat", middleware.RateLimit(rs.limiter), rs.handleChat)
		api.POST("/missions/complete", rs.handleCompleteMission)
		api.POST("/reputation", rs.handleReputation)

		// Сохранения
		api.POST("/save", rs.handleSave)
		api.POST("/load", rs.handleLoad)
		api.DELETE("/save", rs.handleDeleteSave)
		api.GET("/export", rs.handleExport)
		api.POST("/import", rs.handleImport)
	}
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse описывает тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"responder": rs.responder.Name(),
		"uptime":    rs.metrics.GetUptime(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleServerInfo возвращает информацию о сервере
func (rs *RestServer) handleServerInfo(c *gin.Context) {
	snap := rs.game.Snapshot()

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере",
		Data: gin.H{
			"name":       "Echoes of the Hidden",
			"version":    Version,
			"status":     "running",
			"process":    rs.metrics.Collect(),
			"tick":       snap.Tick,
			"game_over":  snap.World.GameOver,
			"ws_clients": rs.game.Hub().ClientCount(),
		},
	})
}

// Start запускает REST сервер; возвращает nil после штатной остановки
func (rs *RestServer) Start() error {
	rs.logger.Info("🌐 REST API слушает %s", rs.http.Addr)
	if err := rs.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop останавливает REST сервер, дожидаясь завершения активных запросов
func (rs *RestServer) Stop(ctx context.Context) error {
	return rs.http.Shutdown(ctx)
}
