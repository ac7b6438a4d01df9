package crawler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultCommand         = "python"
	defaultScript          = "crawler/single_item_updater.py"
	defaultTimeout         = 30 * time.Second
	defaultSettleDelay     = 2 * time.Second
	defaultPollInterval    = time.Second
	defaultMaxPollAttempts = 3

	envCommand = "BUFFOTTE_CRAWLER_COMMAND"
	envScript  = "BUFFOTTE_CRAWLER_SCRIPT"
	envWorkDir = "BUFFOTTE_CRAWLER_WORKDIR"
	envTimeout = "BUFFOTTE_CRAWLER_TIMEOUT"
)

// Config holds runtime settings for the external crawler process and the
// reconciliation polling that follows an invocation.
type Config struct {
	// Command is the interpreter used to launch the crawler.
	Command string `yaml:"command"`
	// Args are inserted between Command and Script, e.g. ["run", "-n", "buffotte", "python"]
	// when Command is "conda".
	Args []string `yaml:"args"`
	// Script is the path to the single-item updater entry point.
	Script  string            `yaml:"script"`
	WorkDir string            `yaml:"work_dir"`
	Env     map[string]string `yaml:"env"`

	Timeout         time.Duration `yaml:"-"`
	SettleDelay     time.Duration `yaml:"-"`
	PollInterval    time.Duration `yaml:"-"`
	MaxPollAttempts int           `yaml:"max_poll_attempts"`
}

// LoadConfig reads configuration from disk.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open crawler config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from a reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	var raw struct {
		Command         string            `yaml:"command"`
		Args            []string          `yaml:"args"`
		Script          string            `yaml:"script"`
		WorkDir         string            `yaml:"work_dir"`
		Env             map[string]string `yaml:"env"`
		Timeout         string            `yaml:"timeout"`
		SettleDelay     string            `yaml:"settle_delay"`
		PollInterval    string            `yaml:"poll_interval"`
		MaxPollAttempts int               `yaml:"max_poll_attempts"`
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read crawler config: %w", err)
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal crawler config: %w", err)
	}

	cfg := &Config{
		Command:         raw.Command,
		Args:            raw.Args,
		Script:          raw.Script,
		WorkDir:         raw.WorkDir,
		Env:             raw.Env,
		MaxPollAttempts: raw.MaxPollAttempts,
	}
	if cfg.Timeout, err = parseDuration(raw.Timeout, defaultTimeout); err != nil {
		return nil, fmt.Errorf("crawler config timeout: %w", err)
	}
	if cfg.SettleDelay, err = parseDuration(raw.SettleDelay, defaultSettleDelay); err != nil {
		return nil, fmt.Errorf("crawler config settle_delay: %w", err)
	}
	if cfg.PollInterval, err = parseDuration(raw.PollInterval, defaultPollInterval); err != nil {
		return nil, fmt.Errorf("crawler config poll_interval: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig returns a Config carrying only the compiled-in defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		// Validate only fails on negative values, which defaults never are.
		panic(err)
	}
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(envCommand); v != "" {
		c.Command = v
	}
	if v := os.Getenv(envScript); v != "" {
		c.Script = v
	}
	if v := os.Getenv(envWorkDir); v != "" {
		c.WorkDir = v
	}
	if v := os.Getenv(envTimeout); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			c.Timeout = time.Duration(ms) * time.Millisecond
		}
	}
}

// Validate fills defaults and rejects nonsensical values.
func (c *Config) Validate() error {
	if c.Command == "" {
		c.Command = defaultCommand
	}
	if c.Script == "" {
		c.Script = defaultScript
	}
	if c.Timeout < 0 || c.SettleDelay < 0 || c.PollInterval < 0 {
		return errors.New("crawler config: durations must not be negative")
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.SettleDelay == 0 {
		c.SettleDelay = defaultSettleDelay
	}
	if c.PollInterval == 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.MaxPollAttempts < 0 {
		return errors.New("crawler config: max_poll_attempts must not be negative")
	}
	if c.MaxPollAttempts == 0 {
		c.MaxPollAttempts = defaultMaxPollAttempts
	}
	return nil
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", raw, err)
	}
	return d, nil
}
