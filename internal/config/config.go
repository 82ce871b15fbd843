package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"StockLens/internal/model"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "configs/config.yaml"

// DefaultTickers is the NSE large-cap watch list.
var DefaultTickers = []string{
	"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "INFY.NS", "ICICIBANK.NS",
	"HINDUNILVR.NS", "SBIN.NS", "BHARTIARTL.NS", "ITC.NS", "KOTAKBANK.NS",
	"LT.NS", "BAJFINANCE.NS", "ASIANPAINT.NS", "MARUTI.NS", "WIPRO.NS",
	"TITAN.NS", "ADANIENT.NS", "ULTRACEMCO.NS", "SUNPHARMA.NS", "AXISBANK.NS",
}

// CronParser accepts six-field expressions (seconds first) and descriptors
// such as @daily, matching cron.WithSeconds.
var CronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Config holds all application configuration.
type Config struct {
	Title  string `yaml:"title"`
	Server struct {
		Addr         string        `yaml:"addr"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"server"`
	DataSource struct {
		Provider  string        `yaml:"provider"`
		BaseURL   string        `yaml:"base_url"`
		Timeout   time.Duration `yaml:"timeout"`
		UserAgent string        `yaml:"user_agent"`
		Proxy     string        `yaml:"proxy"`
	} `yaml:"data_source"`
	Tickers       []string `yaml:"tickers"`
	DefaultPeriod string   `yaml:"default_period"`
	Quotes        struct {
		Enabled  *bool         `yaml:"enabled"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
		Size     int           `yaml:"cache_size"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"quotes"`
	Digest struct {
		Cron              string   `yaml:"cron"`
		Symbols           []string `yaml:"symbols"`
		Period            string   `yaml:"period"`
		RequestsPerMinute int      `yaml:"requests_per_minute"`
	} `yaml:"digest"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

// ResolvePath picks the config file: explicit flag, then CONFIG_PATH, then DefaultPath.
func ResolvePath(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
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

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("STOCKLENS_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("STOCKLENS_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.DataSource.Proxy = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("DIGEST_CRON"); v != "" {
		c.Digest.Cron = v
	}
	if v := os.Getenv("DIGEST_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Digest.RequestsPerMinute = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.Title == "" {
		c.Title = "Indian Stock Analysis Dashboard"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 90 * time.Second
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	c.DataSource.Provider = strings.ToLower(c.DataSource.Provider)
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if len(c.Tickers) == 0 {
		c.Tickers = append([]string(nil), DefaultTickers...)
	}
	for i, t := range c.Tickers {
		c.Tickers[i] = strings.ToUpper(strings.TrimSpace(t))
	}
	if c.DefaultPeriod == "" {
		c.DefaultPeriod = string(model.Period1y)
	}
	if c.Quotes.CacheTTL == 0 {
		c.Quotes.CacheTTL = time.Minute
	}
	if c.Quotes.Size == 0 {
		c.Quotes.Size = 64
	}
	if c.Quotes.Timeout == 0 {
		c.Quotes.Timeout = 5 * time.Second
	}
	if len(c.Digest.Symbols) == 0 {
		c.Digest.Symbols = append([]string(nil), c.Tickers...)
	}
	if c.Digest.Period == "" {
		c.Digest.Period = string(model.Period6mo)
	}
	if c.Digest.RequestsPerMinute == 0 {
		c.Digest.RequestsPerMinute = 30
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// QuotesEnabled reports whether the home page quote board is on. It defaults
// to on for the yahoo provider and off otherwise.
func (c *Config) QuotesEnabled() bool {
	if c.Quotes.Enabled != nil {
		return *c.Quotes.Enabled
	}
	return c.DataSource.Provider == "yahoo"
}

// TelegramEnabled reports whether a bot token is configured.
func (c *Config) TelegramEnabled() bool { return c.Telegram.BotToken != "" }

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	default:
		errs = append(errs, fmt.Errorf("data_source.provider must be yahoo or mock, got %q", c.DataSource.Provider))
	}
	if c.DataSource.Timeout < 0 {
		errs = append(errs, errors.New("data_source.timeout must not be negative"))
	}
	if len(c.Tickers) == 0 {
		errs = append(errs, errors.New("tickers must not be empty"))
	}
	if _, err := model.NamedRange(c.DefaultPeriod); err != nil {
		errs = append(errs, fmt.Errorf("default_period: %w", err))
	}
	if _, err := model.NamedRange(c.Digest.Period); err != nil {
		errs = append(errs, fmt.Errorf("digest.period: %w", err))
	}
	if c.Digest.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("digest.requests_per_minute must not be negative"))
	}
	if c.Digest.Cron != "" {
		if _, err := CronParser.Parse(c.Digest.Cron); err != nil {
			errs = append(errs, fmt.Errorf("digest.cron: %w", err))
		}
		if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
			errs = append(errs, errors.New("telegram.chat_id is required when telegram.bot_token is set"))
		}
	}
	if c.Quotes.Size < 0 {
		errs = append(errs, errors.New("quotes.cache_size must not be negative"))
	}
	return errors.Join(errs...)
}
