package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/rest"

	"buffotte-api/pkg/confkit"
	crawlerpkg "buffotte-api/pkg/crawler"
)

type MysqlConf struct {
	// DSN example: user:pass@tcp(localhost:3306)/buffotte?charset=utf8mb4&parseTime=True&loc=Local
	// parseTime=True is required so updated_at scans as time.Time.
	DSN string `json:",optional"`
}

type CacheTTL struct {
	Short  int `json:",default=10"` // seconds
	Medium int `json:",default=60"`
	Long   int `json:",default=300"`
}

type Config struct {
	rest.RestConf
	// Env indicates the running environment: test | dev | prod.
	Env   string          `json:",default=dev"`
	Mysql MysqlConf       `json:",optional"`
	Redis redis.RedisConf `json:",optional"`
	TTL   CacheTTL        `json:",optional"`

	// JournalDir is where refresh outcome records are written; empty disables
	// the journal.
	JournalDir string `json:",optional"`

	Crawler confkit.Section[crawlerpkg.Config] `json:",optional"`

	mainPath string
	baseDir  string
}

func (c *Config) IsProdEnv() bool {
	return c.Env == "prod"
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	confkit.LoadDotenvOnce()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %s: %w", path, err)
	}

	var cfg Config
	if err := conf.Load(absPath, &cfg, conf.UseEnv()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", absPath, err)
	}

	cfg.mainPath = absPath
	cfg.baseDir = filepath.Dir(absPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.hydrateSections(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "", "test", "dev", "prod":
		if strings.TrimSpace(c.Env) == "" {
			c.Env = "dev"
		}
	default:
		return errors.New("config: env must be one of test|dev|prod")
	}
	if strings.TrimSpace(c.Mysql.DSN) == "" {
		return errors.New("config: mysql.dsn is required")
	}
	return c.validateTTL()
}

func (c *Config) validateTTL() error {
	if c.TTL.Short <= 0 {
		return errors.New("config: ttl.short must be positive")
	}
	if c.TTL.Medium <= 0 {
		return errors.New("config: ttl.medium must be positive")
	}
	if c.TTL.Long <= 0 {
		return errors.New("config: ttl.long must be positive")
	}
	return nil
}

func (c *Config) hydrateSections() error {
	if err := c.Crawler.Hydrate(c.baseDir, crawlerpkg.LoadConfig); err != nil {
		return fmt.Errorf("load crawler config: %w", err)
	}
	return nil
}

// CrawlerConfig returns the hydrated crawler section, falling back to
// compiled-in defaults when no section file was configured.
func (c *Config) CrawlerConfig() *crawlerpkg.Config {
	if c.Crawler.Value != nil {
		return c.Crawler.Value
	}
	return crawlerpkg.DefaultConfig()
}

func (c *Config) MainPath() string {
	return c.mainPath
}

func (c *Config) BaseDir() string {
	return c.baseDir
}
