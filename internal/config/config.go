package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"DexSentinel/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL        string        `yaml:"base_url"`
		Chain          string        `yaml:"chain"`
		CandleInterval string        `yaml:"candle_interval"`
		Timeout        time.Duration `yaml:"timeout"`
		Mock           bool          `yaml:"mock"`
	} `yaml:"data_source"`
	Scan struct {
		PairsPerScan int           `yaml:"pairs_per_scan"`
		Interval     time.Duration `yaml:"interval"`
		Lookback     int           `yaml:"lookback"`
		MinBars      int           `yaml:"min_bars"`
		MaxBackoff   time.Duration `yaml:"max_backoff"`
	} `yaml:"scan"`
	Guard struct {
		MinVolume    float64 `yaml:"min_volume"`
		MinLiquidity float64 `yaml:"min_liquidity"`
		VolumeWindow int     `yaml:"volume_window"`
	} `yaml:"guard"`
	Strategy struct {
		EMAFast           int     `yaml:"ema_fast"`
		EMASlow           int     `yaml:"ema_slow"`
		VolMultConfirm    float64 `yaml:"vol_mult_confirm"`
		BollWindow        int     `yaml:"boll_window"`
		BollK             float64 `yaml:"boll_k"`
		SqueezeLookback   int     `yaml:"squeeze_lookback"`
		SqueezePercentile float64 `yaml:"squeeze_percentile"`
		RSIWindow         int     `yaml:"rsi_window"`
		RSILevel          float64 `yaml:"rsi_level"`
		OBVLookback       int     `yaml:"obv_lookback"`
		ROCWindow         int     `yaml:"roc_window"`
		ROCThreshold      float64 `yaml:"roc_threshold"`
		MinSignals        int     `yaml:"min_signals"`
	} `yaml:"strategy"`
	Digest struct {
		Cron string `yaml:"cron"` // empty disables
	} `yaml:"digest"`
	Health struct {
		Addr string `yaml:"addr"` // empty disables
	} `yaml:"health"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	cfg := &Config{}
	cfg.DataSource.BaseURL = "https://api.dexscreener.com"
	cfg.DataSource.Chain = "solana"
	cfg.DataSource.CandleInterval = "1m"
	cfg.DataSource.Timeout = 10 * time.Second

	cfg.Scan.PairsPerScan = 20
	cfg.Scan.Interval = 30 * time.Second
	cfg.Scan.Lookback = 120
	cfg.Scan.MinBars = 60
	cfg.Scan.MaxBackoff = 5 * time.Minute

	p := strategy.DefaultParams()
	cfg.Guard.MinVolume = p.MinVolume
	cfg.Guard.MinLiquidity = p.MinLiquidity
	cfg.Guard.VolumeWindow = p.VolumeWindow
	cfg.Strategy.EMAFast = p.EMAFast
	cfg.Strategy.EMASlow = p.EMASlow
	cfg.Strategy.VolMultConfirm = p.VolMultConfirm
	cfg.Strategy.BollWindow = p.BollWindow
	cfg.Strategy.BollK = p.BollK
	cfg.Strategy.SqueezeLookback = p.SqueezeLookback
	cfg.Strategy.SqueezePercentile = p.SqueezePercentile
	cfg.Strategy.RSIWindow = p.RSIWindow
	cfg.Strategy.RSILevel = p.RSILevel
	cfg.Strategy.OBVLookback = p.OBVLookback
	cfg.Strategy.ROCWindow = p.ROCWindow
	cfg.Strategy.ROCThreshold = p.ROCThreshold
	cfg.Strategy.MinSignals = p.MinSignals

	cfg.Digest.Cron = "0 0 9 * * *"
	cfg.Health.Addr = ":8080"
	cfg.Log.Level = "info"
	return cfg
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load starts from Default, overlays the YAML file when present, then applies
// environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

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
	return cfg, nil
}

func (c *Config) applyEnv() error {
	for _, key := range []string{"TELEGRAM_BOT_TOKEN", "TELEGRAM_TOKEN"} {
		if v := os.Getenv(key); v != "" {
			c.Telegram.BotToken = v
			break
		}
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}
	if v := os.Getenv("DEXSCREENER_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("DEX_CHAIN"); v != "" {
		c.DataSource.Chain = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("PAIRS_PER_SCAN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PAIRS_PER_SCAN: %w", err)
		}
		c.Scan.PairsPerScan = n
	}
	if v := os.Getenv("SCAN_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SCAN_INTERVAL: %w", err)
		}
		c.Scan.Interval = d
	}
	if v, ok := os.LookupEnv("CRON_DIGEST"); ok {
		c.Digest.Cron = v
	}
	if v, ok := os.LookupEnv("HEALTH_ADDR"); ok {
		c.Health.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	if c.DataSource.BaseURL == "" && !c.DataSource.Mock {
		return fmt.Errorf("data_source.base_url is required")
	}
	if c.Scan.PairsPerScan < 1 {
		return fmt.Errorf("scan.pairs_per_scan must be positive")
	}
	if c.Scan.Interval <= 0 {
		return fmt.Errorf("scan.interval must be positive")
	}
	if c.Scan.MaxBackoff < c.Scan.Interval {
		return fmt.Errorf("scan.max_backoff (%s) must be at least scan.interval (%s)", c.Scan.MaxBackoff, c.Scan.Interval)
	}
	if c.Scan.MinBars < 2 {
		return fmt.Errorf("scan.min_bars must be at least 2")
	}
	if c.Scan.Lookback < c.Scan.MinBars {
		return fmt.Errorf("scan.lookback must be at least scan.min_bars")
	}
	if c.Guard.VolumeWindow < 1 {
		return fmt.Errorf("guard.volume_window must be positive")
	}

	s := c.Strategy
	if s.EMAFast < 1 || s.EMASlow <= s.EMAFast {
		return fmt.Errorf("strategy: need 1 <= ema_fast < ema_slow, got %d/%d", s.EMAFast, s.EMASlow)
	}
	for name, v := range map[string]int{
		"boll_window":      s.BollWindow,
		"squeeze_lookback": s.SqueezeLookback,
		"rsi_window":       s.RSIWindow,
		"obv_lookback":     s.OBVLookback,
		"roc_window":       s.ROCWindow,
	} {
		if v < 1 {
			return fmt.Errorf("strategy.%s must be positive", name)
		}
	}
	if s.SqueezePercentile < 0 || s.SqueezePercentile > 100 {
		return fmt.Errorf("strategy.squeeze_percentile must be within [0, 100]")
	}
	if s.MinSignals < 1 || s.MinSignals > 5 {
		return fmt.Errorf("strategy.min_signals must be within [1, 5]")
	}

	if c.Digest.Cron != "" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.Digest.Cron); err != nil {
			return fmt.Errorf("digest.cron: %w", err)
		}
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Params returns the strategy thresholds.
func (c *Config) Params() strategy.Params {
	s := c.Strategy
	return strategy.Params{
		MinVolume:         c.Guard.MinVolume,
		MinLiquidity:      c.Guard.MinLiquidity,
		VolumeWindow:      c.Guard.VolumeWindow,
		EMAFast:           s.EMAFast,
		EMASlow:           s.EMASlow,
		VolMultConfirm:    s.VolMultConfirm,
		BollWindow:        s.BollWindow,
		BollK:             s.BollK,
		SqueezeLookback:   s.SqueezeLookback,
		SqueezePercentile: s.SqueezePercentile,
		RSIWindow:         s.RSIWindow,
		RSILevel:          s.RSILevel,
		OBVLookback:       s.OBVLookback,
		ROCWindow:         s.ROCWindow,
		ROCThreshold:      s.ROCThreshold,
		MinSignals:        s.MinSignals,
	}
}
