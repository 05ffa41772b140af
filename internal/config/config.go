package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"CoinSentinel/internal/screener"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Binance struct {
		BaseURL           string        `yaml:"base_url"`
		RequestsPerSecond *float64      `yaml:"requests_per_second"`
		RequestTimeout    time.Duration `yaml:"request_timeout"`
	} `yaml:"binance"`
	Screener struct {
		QuoteSuffix      string        `yaml:"quote_suffix"`
		ChangeThreshold  *float64      `yaml:"change_threshold"`
		ProximityRatio   float64       `yaml:"proximity_ratio"`
		CandleInterval   string        `yaml:"candle_interval"`
		CandleLimit      int           `yaml:"candle_limit"`
		RecentHighWindow int           `yaml:"recent_high_window"`
		RSIPeriod        int           `yaml:"rsi_period"`
		Workers          int           `yaml:"workers"`
		RunTimeout       time.Duration `yaml:"run_timeout"`
	} `yaml:"screener"`
	Schedule struct {
		CheckCron string `yaml:"check_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads an optional .env file and the YAML config, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	setString("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	setString("BINANCE_BASE_URL", &c.Binance.BaseURL)
	setString("HTTPS_PROXY", &c.Proxy)
	setString("QUOTE_SUFFIX", &c.Screener.QuoteSuffix)
	setString("CANDLE_INTERVAL", &c.Screener.CandleInterval)
	setString("CRON_CHECK", &c.Schedule.CheckCron)
	setString("SQLITE_PATH", &c.Database.SQLitePath)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FILE", &c.Log.File)

	if v := os.Getenv("CHANGE_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("CHANGE_THRESHOLD: %w", err)
		}
		c.Screener.ChangeThreshold = &f
	}

	if v := os.Getenv("BINANCE_REQUESTS_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("BINANCE_REQUESTS_PER_SECOND: %w", err)
		}
		c.Binance.RequestsPerSecond = &f
	}
	if v := os.Getenv("PROXIMITY_RATIO"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("PROXIMITY_RATIO: %w", err)
		}
		c.Screener.ProximityRatio = f
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"CANDLE_LIMIT", &c.Screener.CandleLimit},
		{"RECENT_HIGH_WINDOW", &c.Screener.RecentHighWindow},
		{"RSI_PERIOD", &c.Screener.RSIPeriod},
		{"SCREENER_WORKERS", &c.Screener.Workers},
	}
	for _, i := range ints {
		if v := os.Getenv(i.key); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", i.key, err)
			}
			*i.dst = parsed
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"RUN_TIMEOUT", &c.Screener.RunTimeout},
		{"BINANCE_REQUEST_TIMEOUT", &c.Binance.RequestTimeout},
	}
	for _, d := range durations {
		if v := os.Getenv(d.key); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", d.key, err)
			}
			*d.dst = parsed
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	def := screener.DefaultConfig()

	if c.Binance.BaseURL == "" {
		c.Binance.BaseURL = "https://api.binance.com"
	}
	if c.Binance.RequestsPerSecond == nil {
		rps := 5.0
		c.Binance.RequestsPerSecond = &rps
	}
	if c.Binance.RequestTimeout == 0 {
		c.Binance.RequestTimeout = 10 * time.Second
	}
	if c.Screener.QuoteSuffix == "" {
		c.Screener.QuoteSuffix = def.QuoteSuffix
	}
	if c.Screener.ChangeThreshold == nil {
		threshold := def.ChangeThreshold
		c.Screener.ChangeThreshold = &threshold
	}
	if c.Screener.ProximityRatio == 0 {
		c.Screener.ProximityRatio = def.ProximityRatio
	}
	if c.Screener.CandleInterval == "" {
		c.Screener.CandleInterval = def.CandleInterval
	}
	if c.Screener.CandleLimit == 0 {
		c.Screener.CandleLimit = def.CandleLimit
	}
	if c.Screener.RecentHighWindow == 0 {
		c.Screener.RecentHighWindow = def.RecentHighWindow
	}
	if c.Screener.RSIPeriod == 0 {
		c.Screener.RSIPeriod = def.RSIPeriod
	}
	if c.Screener.Workers == 0 {
		c.Screener.Workers = def.Workers
	}
	if c.Screener.RunTimeout == 0 {
		c.Screener.RunTimeout = 2 * time.Minute
	}
	if c.Schedule.CheckCron == "" {
		c.Schedule.CheckCron = "0 */5 * * * *"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/coin_sentinel.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that all thresholds are usable. Missing Telegram
// credentials are not an error here; the notifier skips delivery.
func (c *Config) Validate() error {
	s := c.Screener
	if s.QuoteSuffix == "" {
		return fmt.Errorf("screener.quote_suffix is required")
	}
	if s.ChangeThreshold == nil {
		return fmt.Errorf("screener.change_threshold is required")
	}
	if s.ProximityRatio <= 0 || s.ProximityRatio > 1 {
		return fmt.Errorf("screener.proximity_ratio must be in (0, 1], got %v", s.ProximityRatio)
	}
	if s.CandleLimit < screener.MinCloses {
		return fmt.Errorf("screener.candle_limit must be at least %d, got %d", screener.MinCloses, s.CandleLimit)
	}
	if s.RecentHighWindow <= 0 || s.RecentHighWindow > s.CandleLimit {
		return fmt.Errorf("screener.recent_high_window must be in [1, candle_limit], got %d", s.RecentHighWindow)
	}
	if s.RSIPeriod <= 0 {
		return fmt.Errorf("screener.rsi_period must be positive")
	}
	if s.Workers <= 0 {
		return fmt.Errorf("screener.workers must be positive")
	}
	if s.RunTimeout <= 0 {
		return fmt.Errorf("screener.run_timeout must be positive")
	}
	if c.Binance.RequestsPerSecond == nil || *c.Binance.RequestsPerSecond < 0 {
		return fmt.Errorf("binance.requests_per_second must not be negative")
	}
	return nil
}

// ScreenerConfig converts the screener section for the pipeline.
func (c *Config) ScreenerConfig() screener.Config {
	s := c.Screener
	return screener.Config{
		QuoteSuffix:      s.QuoteSuffix,
		ChangeThreshold:  *s.ChangeThreshold,
		ProximityRatio:   s.ProximityRatio,
		CandleInterval:   s.CandleInterval,
		CandleLimit:      s.CandleLimit,
		RecentHighWindow: s.RecentHighWindow,
		RSIPeriod:        s.RSIPeriod,
		Workers:          s.Workers,
	}
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
