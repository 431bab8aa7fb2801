// Команда simulate прогоняет симуляцию без сервера и печатает итог в JSON.
//
//	go run ./cmd/simulate -ticks 600 -right -events
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/annel0/echoes-hidden/internal/config"
	"github.com/annel0/echoes-hidden/internal/entity"
	"github.com/annel0/echoes-hidden/internal/events"
	"github.com/annel0/echoes-hidden/internal/game"
	"github.com/annel0/echoes-hidden/internal/world"
)

// Result описывает итог прогона
type Result struct {
	Ticks    int            `json:"ticks"`
	Captured bool           `json:"captured"`
	Frozen   bool           `json:"frozen"`
	Snapshot game.Snapshot  `json:"snapshot"`
	Events   []events.Event `json:"events,omitempty"`
}

// Options задаёт параметры прогона
type Options struct {
	Ticks      int
	Delta      float64
	Input      entity.Input
	Suspicion  float64
	WithEvents bool
	Game       game.Config
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML-конфигурация (используется раздел game)")
		ticks      = flag.Int("ticks", 600, "Количество тиков")
		delta      = flag.Float64("delta", 1.0, "Дельта тика в кадрах 60 Гц")
		up         = flag.Bool("up", false, "Удерживать вверх")
		down       = flag.Bool("down", false, "Удерживать вниз")
		left       = flag.Bool("left", false, "Удерживать влево")
		right      = flag.Bool("right", false, "Удерживать вправо")
		suspicion  = flag.Float64("suspicion", 0, "Начальная подозрительность")
		withEvents = flag.Bool("events", false, "Включить события в вывод")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	res := Run(Options{
		Ticks:      *ticks,
		Delta:      *delta,
		Input:      entity.Input{Up: *up, Down: *down, Left: *left, Right: *right},
		Suspicion:  *suspicion,
		WithEvents: *withEvents,
		Game:       cfg.Game.Simulation(),
	})

	if err := writeJSON(os.Stdout, res); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

// Run выполняет прогон на стандартной карте комплекса.
// Прогон останавливается раньше, если игра окончена.
func Run(opts Options) Result {
	sim := game.New(world.NewCompoundLayout(), opts.Game)

	rec := &events.Recorder{}
	if opts.WithEvents {
		sim.Events().Subscribe(rec.Emit)
	}
	if opts.Suspicion > 0 {
		sim.SetSuspicion(opts.Suspicion)
	}

	res := Result{}
	for i := 0; i < opts.Ticks; i++ {
		r := sim.Tick(opts.Delta, opts.Input)
		if r.Frozen {
			res.Frozen = true
			break
		}
		res.Ticks++
		if r.Captured {
			res.Captured = true
		}
	}

	res.Snapshot = sim.Snapshot()
	if opts.WithEvents {
		res.Events = rec.Events()
	}
	return res
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("вывод результата: %w", err)
	}
	return nil
}
