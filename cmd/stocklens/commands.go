package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"StockLens/internal/chart"
	"StockLens/internal/dashboard"
	"StockLens/internal/logger"
	"StockLens/internal/model"
	"StockLens/internal/recorder"
	"StockLens/internal/scheduler"
	"StockLens/internal/server"
	"StockLens/internal/termview"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("period", "", "period token: "+periodTokens()+" (default from config)")
	cmd.Flags().String("start", "", "custom range start, YYYY-MM-DD")
	cmd.Flags().String("end", "", "custom range end (exclusive), YYYY-MM-DD")
}

func periodTokens() string {
	names := make([]string, len(model.Periods))
	for i, p := range model.Periods {
		names[i] = string(p)
	}
	return strings.Join(names, " ")
}

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard, the digest scheduler and Telegram polling",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(v, cmd.Flags(), "addr")
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(v)
			if err != nil {
				return err
			}
			defer a.Close()
			if addr := v.GetString("addr"); addr != "" {
				a.cfg.Server.Addr = addr
			}
			logger.Log.Infof("StockLens starting (provider %s)", a.fetcher.Name())

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			srv, err := server.New(server.Deps{
				Config:    a.cfg,
				Collector: a.collector,
				Quotes:    a.quoteService(),
				Recorder:  a.recorder,
			})
			if err != nil {
				return err
			}

			sched := scheduler.NewScheduler(ctx, a.collector, a.notifier, a.recorder, scheduler.Options{
				Symbols:           a.cfg.Digest.Symbols,
				Tickers:           a.cfg.Tickers,
				Period:            model.Period(a.cfg.Digest.Period),
				RequestsPerMinute: a.cfg.Digest.RequestsPerMinute,
			})
			if err := sched.Register(a.cfg.Digest.Cron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if a.telegram != nil {
				go a.telegram.StartPolling(ctx, sched.HandleCommand)
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case sig := <-sigCh:
				logger.Log.Infof("shutdown signal received (%s), stopping...", sig)
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
			}
			cancel()

			shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
			defer done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Log.Warnf("http shutdown: %v", err)
			}
			logger.Log.Info("StockLens stopped")
			return nil
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	return cmd
}

func newAnalyzeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Print indicators, statistics, metrics and news for a symbol",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(v, cmd.Flags(), "period", "start", "end", "json", "rows")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(v)
			if err != nil {
				return err
			}
			defer a.Close()

			rng, err := rangeFlags(v, a.cfg.DefaultPeriod)
			if err != nil {
				return err
			}

			evt := recorder.NewAnalysisEvent(args[0], rng.String(), recorder.SourceCLI)
			rep, err := a.collector.Analyze(cmd.Context(), args[0], rng)
			if err != nil {
				recordCLI(a, evt, 0, err)
				return err
			}
			evt.Symbol = rep.Symbol
			recordCLI(a, evt, rep.Table.Len(), nil)

			view, err := dashboard.NewAnalysisView(rep.Analysis, nil, time.Now())
			if err != nil {
				return err
			}
			if rows := v.GetInt("rows"); rows > 0 {
				view.Indicators = dashboard.IndicatorRows(rep.Table, rows)
			}

			w := cmd.OutOrStdout()
			if v.GetBool("json") {
				return termview.RenderJSON(w, struct {
					View     dashboard.AnalysisView `json:"view"`
					Table    *model.IndicatorTable  `json:"table"`
					Metadata *model.StockMetadata   `json:"metadata"`
				}{view, rep.Table, rep.Metadata}, true)
			}
			return termview.RenderAnalysis(w, view, a.view)
		},
	}
	addRangeFlags(cmd)
	cmd.Flags().Bool("json", false, "print JSON instead of tables")
	cmd.Flags().Int("rows", dashboard.IndicatorRowCount, "number of trailing indicator rows")
	return cmd
}

func newChartCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart SYMBOL",
		Short: "Render the price, volume and RSI chart to a PNG file",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(v, cmd.Flags(), "period", "start", "end", "output", "width", "height")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(v)
			if err != nil {
				return err
			}
			defer a.Close()

			rng, err := rangeFlags(v, a.cfg.DefaultPeriod)
			if err != nil {
				return err
			}
			evt := recorder.NewAnalysisEvent(args[0], rng.String(), recorder.SourceCLI)
			tbl, err := a.collector.History(cmd.Context(), args[0], rng)
			recordCLI(a, evt, tbl.Len(), err)
			if err != nil {
				return err
			}

			path := v.GetString("output")
			if path == "" {
				path = strings.ToUpper(args[0]) + ".png"
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			if err := chart.RenderPNG(chart.Build(tbl, strings.ToUpper(args[0])), f, v.GetInt("width"), v.GetInt("height")); err != nil {
				f.Close()
				os.Remove(path)
				return fmt.Errorf("render chart: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "chart written to %s (%d sessions)\n", path, tbl.Len())
			return nil
		},
	}
	addRangeFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "output file (default SYMBOL.png)")
	cmd.Flags().Int("width", 1200, "image width in pixels")
	cmd.Flags().Int("height", chart.FigureHeight, "image height in pixels")
	return cmd
}

func newDigestCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Run the technical digest once and print it",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(v, cmd.Flags(), "send", "period")
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(v)
			if err != nil {
				return err
			}
			defer a.Close()

			period := model.Period(a.cfg.Digest.Period)
			if p := v.GetString("period"); p != "" {
				r, err := model.NamedRange(p)
				if err != nil {
					return err
				}
				period = r.Period
			}
			sched := scheduler.NewScheduler(cmd.Context(), a.collector, a.notifier, a.recorder, scheduler.Options{
				Symbols:           a.cfg.Digest.Symbols,
				Tickers:           a.cfg.Tickers,
				Period:            period,
				RequestsPerMinute: a.cfg.Digest.RequestsPerMinute,
			})

			var d *model.Digest
			if v.GetBool("send") {
				d, err = sched.RunDigest(cmd.Context())
			} else {
				d, err = sched.BuildDigest(cmd.Context())
			}
			if err != nil {
				return err
			}
			termview.RenderDigest(cmd.OutOrStdout(), d, a.view)
			return nil
		},
	}
	cmd.Flags().Bool("send", false, "send the digest through Telegram and record it")
	cmd.Flags().String("period", "", "period token (default digest.period)")
	return cmd
}

func newTickersCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "tickers",
		Short: "List the configured tickers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(v)
			if err != nil {
				return err
			}
			defer a.Close()
			termview.RenderTickers(cmd.OutOrStdout(), a.cfg.Tickers, a.view)
			return nil
		},
	}
}

func newRunsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent entries of the analysis run log",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(v, cmd.Flags(), "limit")
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(v)
			if err != nil {
				return err
			}
			defer a.Close()

			sr, ok := a.recorder.(*recorder.SQLiteRecorder)
			if !ok {
				return errors.New("run log disabled: set database.sqlite_path or SQLITE_PATH")
			}
			events, err := sr.RecentAnalyses(v.GetInt("limit"))
			if err != nil {
				return fmt.Errorf("read run log: %w", err)
			}
			termview.RenderRuns(cmd.OutOrStdout(), events, a.view)
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "number of entries")
	return cmd
}

func recordCLI(a *app, evt *recorder.AnalysisEvent, bars int, err error) {
	evt.Duration = time.Since(evt.At)
	evt.Bars = bars
	switch {
	case err == nil:
		evt.Status = recorder.StatusOK
	case exitCode(err) == exitUsage:
		evt.Status, evt.Error = recorder.StatusInvalidInput, err.Error()
	default:
		evt.Status, evt.Error = recorder.StatusFetchError, err.Error()
	}
	if rerr := a.recorder.RecordAnalysis(evt); rerr != nil {
		logger.Log.Errorf("record analysis: %v", rerr)
	}
}
