package main

import (
	"errors"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/milk9111/platformkit/prefabs"
	"github.com/milk9111/platformkit/sim"
	"github.com/milk9111/platformkit/telemetry"
)

func main() {
	scenario := flag.String("scenario", "scenario_run_jump.yaml", "scenario spec in prefabs/")
	out := flag.String("out", "", "write a per-tick CSV trace to this file")
	metricsAddr := flag.String("metrics", "", "serve prometheus metrics on this address and keep running after the scenario")
	ticks := flag.Int("ticks", 0, "override the scenario tick count")
	prefabDir := flag.String("prefabs", prefabs.Dir, "directory checked for spec overrides before the embedded copies")
	flag.Parse()

	prefabs.Dir = *prefabDir

	sc, err := sim.LoadScenario(*scenario)
	if err != nil {
		log.Fatalf("simulate: %v", err)
	}
	if *ticks > 0 {
		sc.Ticks = *ticks
	}

	var trace *telemetry.TraceWriter
	if *out != "" {
		trace, err = telemetry.CreateTrace(*out)
		if err != nil {
			log.Fatalf("simulate: %v", err)
		}
		sc.Sim.Observe(trace)
	}

	metrics := telemetry.NewMetrics()
	sc.Sim.Observe(metrics)

	cycles := sc.Run()
	if err := trace.Close(); err != nil {
		log.Printf("simulate: %v", err)
	}

	c := sc.Character
	pos := c.Body.Position()
	log.Printf("simulate: %s: %d ticks, %d dropped, %d frames with flow cycles", sc.Name, sc.Sim.Ticks(), sc.Sim.Dropped(), cycles)
	log.Printf("simulate: %s ended in %s/%s at (%.3f, %.3f) on_ground=%t", c.Name, c.Flow(), c.State(), pos.X, pos.Y, c.Ground.OnGround())

	if *metricsAddr == "" {
		if cycles > 0 {
			os.Exit(1)
		}
		return
	}
	log.Printf("simulate: serving metrics on %s/metrics", *metricsAddr)
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(*metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("simulate: %v", err)
	}
}
