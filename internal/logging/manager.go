package logging

import (
	"fmt"
	"os"
	"sort"
	"sync"
)

// Имена компонентов сервера. Каждый пишет в собственный файл <component>_<время>.log.
const (
	ComponentServer   = "server"
	ComponentGame     = "game"
	ComponentHub      = "hub"
	ComponentEventBus = "eventbus"
	ComponentStorage  = "storage"
	ComponentAPI      = "api"
)

// componentLevel переопределяет уровни одного компонента
type componentLevel struct {
	console LogLevel
	file    LogLevel
}

// LoggerManager хранит логгеры компонентов и их уровни
type LoggerManager struct {
	mu        sync.RWMutex
	loggers   map[string]*Logger
	overrides map[string]componentLevel
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает глобальный менеджер
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = NewLoggerManager()
	})
	return globalManager
}

func NewLoggerManager() *LoggerManager {
	return &LoggerManager{
		loggers:   make(map[string]*Logger),
		overrides: make(map[string]componentLevel),
	}
}

// GetLogger возвращает логгер компонента, создавая его при первом обращении.
// Переопределённый уровень компонента применяется сразу после создания.
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.RLock()
	logger, ok := lm.loggers[component]
	lm.mu.RUnlock()
	if ok {
		return logger, nil
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()
	if logger, ok := lm.loggers[component]; ok {
		return logger, nil
	}

	logger, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("логгер %s: %w", component, err)
	}
	if lvl, ok := lm.overrides[component]; ok {
		logger.SetLevels(lvl.console, lvl.file)
	}
	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger никогда не возвращает nil: без доступа к каталогу логов пишет в stdout
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	logger, err := lm.GetLogger(component)
	if err == nil {
		return logger
	}
	level := currentOptions().ConsoleLevel
	lm.mu.RLock()
	if lvl, ok := lm.overrides[component]; ok {
		level = lvl.console
	}
	lm.mu.RUnlock()
	return NewWriterLogger(component, os.Stdout, level)
}

// SetComponentLevels задаёт уровни консоли для перечисленных компонентов.
// Файловый уровень опускается вместе с консольным, если тот ниже.
// Уже созданные логгеры перенастраиваются на месте.
func (lm *LoggerManager) SetComponentLevels(levels map[string]LogLevel) {
	fileLevel := currentOptions().FileLevel

	lm.mu.Lock()
	defer lm.mu.Unlock()
	for component, console := range levels {
		lvl := componentLevel{console: console, file: fileLevel}
		if console < fileLevel {
			lvl.file = console
		}
		lm.overrides[component] = lvl
		if logger, ok := lm.loggers[component]; ok {
			logger.SetLevels(lvl.console, lvl.file)
		}
	}
}

// SetLogLevel меняет уровни уже созданного логгера
func (lm *LoggerManager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) error {
	lm.mu.RLock()
	logger, ok := lm.loggers[component]
	lm.mu.RUnlock()
	if !ok {
		return fmt.Errorf("логгер компонента %s не создан", component)
	}
	logger.SetLevels(consoleLevel, fileLevel)
	return nil
}

// CloseAll закрывает файлы всех компонентов и забывает их.
// Переопределения уровней сохраняются.
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var lastErr error
	for component, logger := range lm.loggers {
		if err := logger.Close(); err != nil {
			lastErr = fmt.Errorf("закрытие логгера %s: %w", component, err)
		}
	}
	lm.loggers = make(map[string]*Logger)
	return lastErr
}

func (lm *LoggerManager) ListComponents() []string {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	components := make([]string, 0, len(lm.loggers))
	for component := range lm.loggers {
		components = append(components, component)
	}
	sort.Strings(components)
	return components
}

// ParseComponentLevels разбирает секцию logging.components конфигурации
func ParseComponentLevels(raw map[string]string) (map[string]LogLevel, error) {
	levels := make(map[string]LogLevel, len(raw))
	for component, s := range raw {
		lvl, err := ParseLevel(s)
		if err != nil {
			return nil, fmt.Errorf("logging.components.%s: %w", component, err)
		}
		levels[component] = lvl
	}
	return levels, nil
}

func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetServerLogger() *Logger   { return GetComponentLogger(ComponentServer) }
func GetGameLogger() *Logger     { return GetComponentLogger(ComponentGame) }
func GetHubLogger() *Logger      { return GetComponentLogger(ComponentHub) }
func GetEventBusLogger() *Logger { return GetComponentLogger(ComponentEventBus) }
func GetStorageLogger() *Logger  { return GetComponentLogger(ComponentStorage) }
func GetAPILogger() *Logger      { return GetComponentLogger(ComponentAPI) }
