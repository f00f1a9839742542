package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	powermon "github.com/aharivel/power-measurement-toolkit"
)

func main() {
	cfg := powermon.DefaultConfig()
	cfg.Sampling.Duration = powermon.Duration(10 * time.Second)
	cfg.Sampling.Quiet = true

	report := powermon.NewCallbackSink("report", func(samples []powermon.Sample) error {
		for _, s := range samples {
			if s.OnChipPower != nil {
				fmt.Printf("%s package draw %.2fW\n", s.Timestamp, s.OnChipPower.Watts)
			}
		}
		return nil
	})

	rt, err := powermon.NewRuntime(cfg, powermon.WithSink(report))
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := rt.Run(ctx)
	if err != nil {
		log.Fatalf("monitor run: %v", err)
	}
	fmt.Printf("collected %d samples\n", summary.Samples)
}
