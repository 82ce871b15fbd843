package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"StockLens/internal/collector"
	"StockLens/internal/dashboard"
	"StockLens/internal/model"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", userMessage(err))
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("STOCKLENS")
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "stocklens",
		Short:         "Stock analysis dashboard and terminal reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "config file (default $CONFIG_PATH or "+defaultConfigHint+")")
	root.PersistentFlags().Bool("offline", false, "use generated data instead of the network provider")
	root.PersistentFlags().String("log-level", "", "override log.level (debug, info, warn, error)")
	root.PersistentFlags().Bool("no-color", false, "disable coloured table output")
	mustBind(v, root.PersistentFlags(), "config", "offline", "log-level", "no-color")

	root.AddCommand(
		newServeCmd(v),
		newAnalyzeCmd(v),
		newChartCmd(v),
		newDigestCmd(v),
		newTickersCmd(v),
		newRunsCmd(v),
	)
	return root
}

// exitCode maps invalid input to a usage error and everything else to 1.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, collector.ErrInvalidSymbol), errors.Is(err, model.ErrInvalidRange):
		return exitUsage
	}
	return exitError
}

// userMessage hides provider details behind the standard fetch failure text.
func userMessage(err error) string {
	if errors.Is(err, collector.ErrFetch) {
		return dashboard.FetchErrorMessage
	}
	return err.Error()
}
