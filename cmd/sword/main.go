// Command sword runs a small demonstration simulation on top of the ECS
// core: archetypes and spawns come from YAML config, a decay system drains
// health, a cull system destroys the dead, and a census system reads the
// world in parallel for logging. The loop is the external tick driver; the
// engine itself owns no clock.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sword-ecs/sword/internal/core/archetype"
	"github.com/sword-ecs/sword/internal/core/events/bus"
	"github.com/sword-ecs/sword/internal/core/fields"
	"github.com/sword-ecs/sword/internal/core/observability/log"
	"github.com/sword-ecs/sword/internal/core/query"
	"github.com/sword-ecs/sword/internal/core/runner"
	"github.com/sword-ecs/sword/internal/core/snapshot"
	"github.com/sword-ecs/sword/internal/core/world"
	"github.com/sword-ecs/sword/pkg/concurrent"
	"github.com/sword-ecs/sword/pkg/sequence"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	logger := log.New(log.LevelInfo)

	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfig(*configPath)
		if err != nil {
			fmt.Println("Error loading config:", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	w := world.New(world.WithLogger(logger))
	reg := archetype.NewRegistry()
	for name, tpl := range cfg.Archetypes {
		reg.Register(name, tpl)
	}
	engine := query.NewEngine(w)
	run := runner.New(w, runner.WithLogger(logger))

	// Count every emission passing the middleware chain.
	var emitted uint64
	w.Bus().Use(func(_ bus.Event, _ any, next func()) {
		emitted++
		next()
	})

	alive := engine.Watch(query.Filter{Tags: []string{"alive"}})
	alive.OnRemove(func(e *world.Entity) {
		logger.Info("creature culled", log.Uint64("id", e.ID()))
	})

	for _, spec := range cfg.Spawn {
		for i := 0; i < spec.Count; i++ {
			e, err := reg.Instantiate(w, spec.Archetype, spec.Overrides)
			if err != nil {
				fmt.Println("Error spawning:", err)
				os.Exit(1)
			}
			w.GenID(e)
		}
	}
	logger.Info("world seeded",
		log.Int("entities", w.Len()),
		log.Int("archetypes", len(reg.Names())),
	)

	run.Add(runner.Func("decay", decaySystem), runner.Order{Auto: true, Number: 10})
	run.Add(runner.Func("cull", cullSystem(engine)), runner.Order{Auto: true, Number: 20})
	run.Add(runner.Func("census", censusSystem(engine, logger)), runner.Order{Auto: true, Number: 30})

	interval := time.Duration(float64(time.Second) / cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
loop:
	for {
		select {
		case <-stopCh:
			break loop
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if err := run.Tick(ctx, dt); err != nil {
				logger.Error("tick aborted", log.Err("error", err))
				break loop
			}
			if alive.Len() == 0 {
				logger.Info("all creatures gone", log.Uint64("events", emitted))
				break loop
			}
		}
	}
	cancel()

	if cfg.SnapshotPath != "" {
		data, err := snapshot.Encode(w, reg)
		if err != nil {
			logger.Error("snapshot failed", log.Err("error", err))
			return
		}
		if err = os.WriteFile(cfg.SnapshotPath, data, 0o644); err != nil {
			logger.Error("snapshot write failed", log.Err("error", err))
			return
		}
		logger.Info("snapshot written", log.String("path", cfg.SnapshotPath))
	}
}

// decaySystem drains health from every decaying entity.
func decaySystem(_ context.Context, dt float64, w *world.World) error {
	for _, e := range w.Entities() {
		rate, ok := fields.Number(e, "decay")
		if !ok {
			continue
		}
		health, ok := fields.Number(e, "health")
		if !ok {
			continue
		}
		if err := w.Update(e, world.Components{"health": health - rate*dt}); err != nil {
			return err
		}
	}
	return nil
}

// cullSystem destroys entities whose health reached zero and leaves a relic
// behind via the deferred queue, so the replacement shows up next tick.
func cullSystem(engine *query.Engine) func(context.Context, float64, *world.World) error {
	return func(_ context.Context, _ float64, w *world.World) error {
		dead := engine.Evaluate(query.Filter{
			Has: []string{"health"},
			Where: func(e *world.Entity) bool {
				n, _ := fields.Number(e, "health")
				return n <= 0
			},
		})
		for _, e := range dead {
			if err := w.Destroy(e); err != nil {
				return err
			}
		}
		return nil
	}
}

// censusSystem sums remaining health with a parallel read-only pass.
func censusSystem(engine *query.Engine, logger log.Log) func(context.Context, float64, *world.World) error {
	var ticks int
	return func(context.Context, float64, *world.World) error {
		ticks++
		if ticks%20 != 0 {
			return nil
		}
		living := engine.EvaluateCached("living", query.Filter{Tags: []string{"alive"}})
		totals := make(chan float64, len(living))
		err := concurrent.ForEach(sequence.From(living), func(e *world.Entity) error {
			n, _ := fields.Number(e, "health")
			totals <- n
			return nil
		})
		if err != nil {
			return err
		}
		close(totals)
		var sum float64
		for n := range totals {
			sum += n
		}
		logger.Info("census",
			log.Int("alive", len(living)),
			log.Float64("total_health", sum),
		)
		return nil
	}
}
