package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"StockLens/internal/collector"
	"StockLens/internal/config"
	"StockLens/internal/logger"
	"StockLens/internal/model"
	"StockLens/internal/notifier"
	"StockLens/internal/quotes"
	"StockLens/internal/recorder"
	"StockLens/internal/termview"
)

const defaultConfigHint = config.DefaultPath

var envReplacer = strings.NewReplacer("-", "_")

// app holds the wired components shared by every command.
type app struct {
	cfg       *config.Config
	fetcher   collector.Fetcher
	collector *collector.Collector
	recorder  recorder.Recorder
	notifier  notifier.Notifier
	telegram  *notifier.TelegramNotifier
	view      termview.Options
}

func mustBind(v *viper.Viper, fs *pflag.FlagSet, names ...string) {
	if err := bindFlags(v, fs, names...); err != nil {
		panic(err)
	}
}

// bindFlags binds command flags at run time, so subcommands sharing a flag
// name do not overwrite each other's binding.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, names ...string) error {
	for _, n := range names {
		if err := v.BindPFlag(n, fs.Lookup(n)); err != nil {
			return fmt.Errorf("bind flag %s: %w", n, err)
		}
	}
	return nil
}

// loadApp reads the configuration, applies flag overrides and wires the
// components. Close must be called when done.
func loadApp(v *viper.Viper) (*app, error) {
	cfg, err := config.Load(config.ResolvePath(v.GetString("config")))
	if err != nil {
		return nil, err
	}
	if v.GetBool("offline") {
		cfg.DataSource.Provider = "mock"
	}
	if lvl := v.GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, view: termview.Options{Color: !v.GetBool("no-color")}}
	a.fetcher = newFetcher(cfg)
	a.collector = collector.NewCollector(a.fetcher, cfg.DataSource.Timeout)
	logger.Log.Debugf("data source: %s", a.fetcher.Name())

	a.recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logger.Log.Warnf("init sqlite recorder failed, using noop: %v", err)
		} else {
			a.recorder = sr
		}
	}

	a.notifier = notifier.NoopNotifier{}
	if cfg.TelegramEnabled() {
		a.telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.DataSource.Proxy)
		a.notifier = a.telegram
	}
	return a, nil
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		logger.Log.Warnf("close recorder: %v", err)
	}
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	if cfg.DataSource.Provider == "mock" {
		return &collector.MockFetcher{}
	}
	return collector.NewYahooFetcher(collector.YahooOptions{
		BaseURL:   cfg.DataSource.BaseURL,
		Proxy:     cfg.DataSource.Proxy,
		UserAgent: cfg.DataSource.UserAgent,
		Timeout:   cfg.DataSource.Timeout,
	})
}

// quoteService is the cached quote board source, or nil when disabled.
func (a *app) quoteService() quotes.Service {
	if !a.cfg.QuotesEnabled() {
		return nil
	}
	return quotes.NewCacheService(quotes.NewYFService(a.cfg.Quotes.Timeout), a.cfg.Quotes.CacheTTL, a.cfg.Quotes.Size)
}

// rangeFlags resolves --period/--start/--end, falling back to the configured
// default period.
func rangeFlags(v *viper.Viper, def string) (model.Range, error) {
	period := v.GetString("period")
	if period == "" {
		period = def
	}
	return model.ParseRange(period, v.GetString("start"), v.GetString("end"))
}
