package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	powermon "github.com/aharivel/power-measurement-toolkit"
)

func main() {
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "loaded environment overrides from .env")
	}

	args := os.Args[1:]
	cmd := "run"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd = args[0]
		args = args[1:]
	}

	var err error
	switch cmd {
	case "run":
		err = runCommand(args)
	case "validate":
		err = validateCommand(args)
	case "stats":
		err = statsCommand(args)
	case "help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "powermon %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	duration := fs.Float64("duration", 0, "Duration to monitor in seconds (default: infinite)")
	interval := fs.Float64("interval", 1.0, "Sampling interval in seconds")
	output := fs.String("output", "", "Output CSV file path (optional)")
	quiet := fs.Bool("quiet", false, "Quiet mode - no console output")
	cfgPath := fs.String("config", "", "Path to YAML configuration file (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Flags beat the config file, but only when given explicitly.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "duration":
			cfg.Sampling.Duration = secondsToDuration(*duration)
		case "interval":
			cfg.Sampling.Interval = secondsToDuration(*interval)
		case "output":
			cfg.Output.CSVPath = *output
		case "quiet":
			cfg.Sampling.Quiet = *quiet
		}
	})

	if os.Geteuid() != 0 {
		fmt.Fprintln(os.Stderr, "Warning: Not running as root. IPMI and RAPL access may fail.")
		fmt.Fprintln(os.Stderr, "Consider running with: sudo")
		fmt.Fprintln(os.Stderr)
	}

	rt, err := powermon.NewRuntime(cfg)
	if err != nil {
		return err
	}

	if err := rt.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR: Interface validation failed:")
		for _, cause := range strings.Split(err.Error(), "\n") {
			fmt.Fprintf(os.Stderr, "  - %s\n", cause)
		}
		os.Exit(1)
	}

	printBanner(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := rt.Run(ctx)
	if err != nil {
		return err
	}

	if summary.Interrupted {
		fmt.Println("\nMonitoring stopped by user")
	}
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Monitoring Complete - %d measurements taken\n", summary.Samples)
	if summary.Dropped > 0 {
		fmt.Printf("Warning: %d oldest measurements evicted from the buffer\n", summary.Dropped)
	}
	fmt.Println(strings.Repeat("=", 80))
	if cfg.Output.CSVPath != "" {
		fmt.Printf("Saved %d measurements to %s\n", summary.Samples, cfg.Output.CSVPath)
	}

	// An interrupted run that flushed cleanly still exits 0.
	return nil
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	rt, err := powermon.NewRuntime(cfg)
	if err != nil {
		return err
	}
	if err := rt.Validate(); err != nil {
		return err
	}
	fmt.Println("interfaces look good: RAPL readable, IPMI tool on PATH")
	return nil
}

func statsCommand(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	url := fs.String("url", "http://localhost:9100/metrics", "Prometheus metrics endpoint")
	interval := fs.Duration("interval", 2*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Streaming metrics from %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printMetricsSnapshot(*url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

func printMetricsSnapshot(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	targets := map[string]float64{
		"powermon_ticks_total":     0,
		"powermon_last_ipmi_watts": 0,
		"powermon_last_rapl_watts": 0,
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for key := range targets {
			if strings.HasPrefix(line, key+" ") {
				var value float64
				if _, err := fmt.Sscanf(line, key+" %f", &value); err == nil {
					targets[key] = value
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("[%s] ticks=%.0f ipmi=%.2fW rapl=%.2fW\n",
		time.Now().Format(time.RFC3339),
		targets["powermon_ticks_total"],
		targets["powermon_last_ipmi_watts"],
		targets["powermon_last_rapl_watts"],
	)
	return nil
}

func loadConfig(path string) (*powermon.Config, error) {
	if path == "" {
		return powermon.DefaultConfig(), nil
	}
	return powermon.LoadConfig(path)
}

func secondsToDuration(seconds float64) powermon.Duration {
	return powermon.Duration(seconds * float64(time.Second))
}

func printBanner(cfg *powermon.Config) {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("Power Monitoring Started")
	fmt.Printf("Interval: %gs\n", cfg.Sampling.Interval.Std().Seconds())
	if cfg.Sampling.Duration > 0 {
		fmt.Printf("Duration: %gs\n", cfg.Sampling.Duration.Std().Seconds())
	} else {
		fmt.Println("Duration: Infinite (Ctrl+C to stop)")
	}
	if cfg.Output.CSVPath != "" {
		fmt.Printf("Output: %s\n", cfg.Output.CSVPath)
	}
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()
}

func printUsage() {
	fmt.Printf(`powermon - IPMI + RAPL power monitoring

Usage:
  powermon [run] [flags]
  powermon <command> [flags]

Commands:
  run        Sample both power sources periodically (default)
  validate   Run the startup interface checks and exit
  stats      Poll the Prometheus metrics endpoint of a running instance
  help       Show this message

Run flags:
  -duration   Duration to monitor in seconds (default: infinite)
  -interval   Sampling interval in seconds (default: 1.0)
  -output     Output CSV file path (optional)
  -quiet      Suppress the console stream; CSV is still written
  -config     YAML configuration file for paths, sinks, and tuning

Examples:
  sudo powermon -duration 60 -interval 1 -output test1.csv
  sudo powermon -output baseline.csv
  sudo powermon -duration 30 -interval 0.5 -output fast_sample.csv -quiet
  powermon validate -config ./powermon.yaml
`)
}
