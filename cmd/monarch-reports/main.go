package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Veraticus/monarch-reports/internal/cli"
	"github.com/Veraticus/monarch-reports/internal/common"
	"github.com/Veraticus/monarch-reports/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "monarch-reports",
		Short: "📊 Export Monarch Money data to CSV reports",
		Long: `monarch-reports logs in to Monarch Money and writes four CSV reports:
current balances, an appended balance history, year-to-date transactions,
and investment holdings.

Running without a subcommand is the same as "monarch-reports report".`,
		PersistentPreRunE: initConfig,
		RunE:              runReport,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/monarch-reports/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	// Bind flags to viper
	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))

	addReportFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	interrupts := cli.NewInterruptHandler(os.Stderr)
	ctx, stop := interrupts.HandleInterrupts(context.Background())

	err := rootCmd.ExecuteContext(ctx)
	stop() // Always cleanup

	if err != nil {
		printError(os.Stderr, err, interrupts.WasInterrupted())
		os.Exit(1)
	}
}

// printError reports a failed run. After an interrupt the handler has already
// told the user what happened, so only the log entry is written.
func printError(w io.Writer, err error, interrupted bool) {
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		fmt.Fprintln(w, cli.FormatError(err.Error()))
		return
	}

	common.LogError(err, "Report run failed", common.Fields{
		"interrupted":             interrupted,
		"report_balances":         viper.GetString(config.KeyReportBalances),
		"report_balances_history": viper.GetString(config.KeyReportBalancesHistory),
		"report_transactions":     viper.GetString(config.KeyReportTransactions),
		"report_portfolio":        viper.GetString(config.KeyReportPortfolio),
	})
	if interrupted {
		return
	}
	fmt.Fprintln(w, cli.FormatError(fmt.Sprintf("Report run failed: %v", err)))
}

func initConfig(_ *cobra.Command, _ []string) error {
	// Set up config file
	if cfgFile != "" {
		viper.SetConfigFile(config.ExpandPath(cfgFile))
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		// Search for config in standard locations
		viper.AddConfigPath(fmt.Sprintf("%s/.config/monarch-reports", home))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	config.SetDefaults(viper.GetViper())
	config.BindEnv(viper.GetViper())

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, flags and environment may be enough
	}

	if err := setupLogging(); err != nil {
		return common.NewUserError("Invalid logging configuration", err)
	}

	return nil
}

func setupLogging() error {
	level, err := common.ParseLevel(viper.GetString(config.KeyLogLevel))
	if err != nil {
		return err
	}
	return common.SetupLogger(os.Stderr, level, viper.GetString(config.KeyLogFormat))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "monarch-reports %s\n", version)
		},
	}
}
