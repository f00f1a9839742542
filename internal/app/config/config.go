package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aharivel/power-measurement-toolkit/internal/adapters/ipmi"
	"github.com/aharivel/power-measurement-toolkit/internal/adapters/rapl"
	"github.com/aharivel/power-measurement-toolkit/internal/domain"
)

// Duration wraps time.Duration so YAML can use human forms like "500ms" or
// "5s". Plain integers are taken as nanoseconds.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(n)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

type Config struct {
	Sampling  SamplingConfig  `yaml:"sampling"`
	RAPL      RAPLConfig      `yaml:"rapl"`
	IPMI      IPMIConfig      `yaml:"ipmi"`
	Estimator EstimatorConfig `yaml:"estimator"`
	Output    OutputConfig    `yaml:"output"`
	Archive   ArchiveConfig   `yaml:"archive"`
	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Journal   JournalConfig   `yaml:"journal"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type SamplingConfig struct {
	Interval  Duration `yaml:"interval"`
	Duration  Duration `yaml:"duration"` // zero samples until interrupted
	Quiet     bool     `yaml:"quiet"`
	BufferCap int      `yaml:"buffer_cap"`
}

type RAPLConfig struct {
	EnergyPath string `yaml:"energy_path"`
}

type IPMIConfig struct {
	Tool    string   `yaml:"tool"`
	Args    []string `yaml:"args"`
	Timeout Duration `yaml:"timeout"`
}

type EstimatorConfig struct {
	// CounterWidthUJ overrides the assumed accumulator width for platforms
	// whose counter is not 32 bits wide.
	CounterWidthUJ uint64 `yaml:"counter_width_uj"`
}

type OutputConfig struct {
	CSVPath string `yaml:"csv_path"`
}

type ArchiveConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type JournalConfig struct {
	Dir string `yaml:"dir"`
}

type MetricsConfig struct {
	// Addr enables the /metrics endpoint when set; a one-shot CLI run
	// usually leaves it empty.
	Addr string `yaml:"addr"`
}

// Load reads YAML from disk, then applies environment overrides and
// defaults.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	var cfg Config
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg
}

// applyEnv lets deployment scripts override host-specific paths without
// editing the config file. Loading .env is the caller's job (godotenv in
// main).
func (c *Config) applyEnv() {
	if v := os.Getenv("POWERMON_RAPL_PATH"); v != "" {
		c.RAPL.EnergyPath = v
	}
	if v := os.Getenv("POWERMON_IPMI_TOOL"); v != "" {
		c.IPMI.Tool = v
	}
	if v := os.Getenv("POWERMON_ARCHIVE_CONN"); v != "" {
		c.Archive.ConnString = v
	}
	if v := os.Getenv("POWERMON_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
}

func (c *Config) applyDefaults() {
	if c.Sampling.Interval <= 0 {
		c.Sampling.Interval = Duration(time.Second)
	}
	if c.RAPL.EnergyPath == "" {
		c.RAPL.EnergyPath = rapl.DefaultEnergyPath
	}
	if c.IPMI.Tool == "" {
		c.IPMI.Tool = ipmi.DefaultTool
	}
	if len(c.IPMI.Args) == 0 {
		c.IPMI.Args = append([]string(nil), ipmi.DefaultArgs...)
	}
	if c.IPMI.Timeout <= 0 {
		c.IPMI.Timeout = Duration(ipmi.DefaultTimeout)
	}
	if c.Estimator.CounterWidthUJ == 0 {
		c.Estimator.CounterWidthUJ = domain.DefaultCounterWidth
	}
	if c.Archive.Table == "" {
		c.Archive.Table = "measurements"
	}
}

func (c *Config) validate() error {
	if c.Sampling.Interval <= 0 {
		return fmt.Errorf("sampling.interval must be positive")
	}
	if c.Sampling.Duration < 0 {
		return fmt.Errorf("sampling.duration must not be negative")
	}
	if c.IPMI.Timeout <= 0 {
		return fmt.Errorf("ipmi.timeout must be positive")
	}
	return nil
}
