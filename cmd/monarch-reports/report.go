package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/monarch-reports/internal/cli"
	"github.com/Veraticus/monarch-reports/internal/common"
	"github.com/Veraticus/monarch-reports/internal/config"
	"github.com/Veraticus/monarch-reports/internal/monarch"
	"github.com/Veraticus/monarch-reports/internal/report"
	"github.com/Veraticus/monarch-reports/internal/service"
	"github.com/Veraticus/monarch-reports/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Write balance, transaction and portfolio reports",
		Long: `Log in to Monarch Money and write the CSV reports.

A saved session is reused when available. If Monarch rejects it, the tool
waits --retry-delay, logs in again from scratch, and retries the request once.

Reports are written in order: balances (plus balance history), transactions,
portfolio. The first failure stops the run; reports already written are kept.`,
		RunE: runReport,
	}
}

// addReportFlags registers the report flags on the root command so they apply
// to both the bare command and the report subcommand.
func addReportFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("username", "", "Monarch email (required)")
	flags.String("password", "", "Monarch password (required)")
	flags.String("token", "", "Monarch MFA secret, displayed by QR code during MFA setup (required)")
	flags.String("session", monarch.DefaultSessionFile, "session file to use")
	flags.String("report-balances", report.DefaultBalancesPath, "file location for balances report")
	flags.String("report-balances-history", report.DefaultBalancesHistoryPath, "file location for balances history report")
	flags.String("report-transactions", report.DefaultTransactionsPath, "file location for transactions report")
	flags.String("report-portfolio", report.DefaultPortfolioPath, "file location for portfolio holdings report")
	flags.Duration("retry-delay", service.DefaultRetryDelay, "wait before logging in again after Monarch rejects the session")
	flags.String("base-url", monarch.DefaultBaseURL, "Monarch API base URL")

	bind := map[string]string{
		config.KeyUsername:              "username",
		config.KeyPassword:              "password",
		config.KeyMFASecret:             "token",
		config.KeySessionFile:           "session",
		config.KeyReportBalances:        "report-balances",
		config.KeyReportBalancesHistory: "report-balances-history",
		config.KeyReportTransactions:    "report-transactions",
		config.KeyReportPortfolio:       "report-portfolio",
		config.KeyRetryDelay:            "retry-delay",
		config.KeyBaseURL:               "base-url",
	}
	for key, flag := range bind {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return common.NewUserError("Cannot start report run", err)
	}

	sess, err := session.New(monarch.NewFactory(cfg.Monarch()), cfg.Retry())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := sess.Login(ctx, true); err != nil {
		return err
	}

	reporter, err := report.NewReporter(sess, cfg.Reports,
		report.WithProgress(cli.TerminalOrNil(cmd.ErrOrStderr())))
	if err != nil {
		return err
	}

	summary, err := reporter.Run(ctx)
	if err != nil {
		return err
	}

	slog.Debug("Report run finished", "summary", summary)
	_, err = fmt.Fprintln(cmd.OutOrStdout(), renderSummary(cfg.Reports, summary))
	return err
}

func renderSummary(paths report.Paths, s report.Summary) string {
	content := cli.RenderFields([]cli.Field{
		{Label: "Balances", Value: fmt.Sprintf("%s → %s", cli.FormatCount(s.Balances, "row"), paths.Balances)},
		{Label: "History", Value: fmt.Sprintf("%s appended → %s", cli.FormatCount(s.Balances, "row"), paths.BalancesHistory)},
		{Label: "Transactions", Value: fmt.Sprintf("%s → %s", cli.FormatCount(s.Transactions, "row"), paths.Transactions)},
		{Label: "Portfolio", Value: fmt.Sprintf("%s from %s → %s",
			cli.FormatCount(s.Holdings, "row"), cli.FormatCount(s.Accounts, "account"), paths.Portfolio)},
	})
	return cli.RenderBox(cli.ChartIcon+" Reports written", content) + "\n" + cli.FormatSuccess("Done")
}
