package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/monarch-reports/internal/common"
	"github.com/Veraticus/monarch-reports/internal/monarch"
	"github.com/Veraticus/monarch-reports/internal/report"
	"github.com/Veraticus/monarch-reports/internal/service"
	"github.com/spf13/viper"
)

// Configuration keys. Environment variables use the MONARCH_ prefix with
// dots replaced by underscores, e.g. MONARCH_USERNAME or MONARCH_LOGGING_LEVEL.
const (
	KeyUsername               = "username"
	KeyPassword               = "password"
	KeyMFASecret              = "token"
	KeySessionFile            = "session"
	KeyBaseURL                = "base_url"
	KeyHTTPTimeout            = "http_timeout"
	KeyRetryDelay             = "retry_delay"
	KeyReportBalances         = "report_balances"
	KeyReportBalancesHistory  = "report_balances_history"
	KeyReportTransactions     = "report_transactions"
	KeyReportPortfolio        = "report_portfolio"
	KeyLogLevel               = "logging.level"
	KeyLogFormat              = "logging.format"
	defaultHTTPTimeout        = 30 * time.Second
	requiredCredentialsReason = "set it with a flag, the config file, or a MONARCH_ environment variable"
)

// Config is the resolved configuration for one report run.
type Config struct {
	Username    string
	Password    string
	MFASecret   string
	SessionFile string
	BaseURL     string
	LogLevel    string
	LogFormat   string
	Reports     report.Paths
	RetryDelay  time.Duration
	HTTPTimeout time.Duration
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySessionFile, monarch.DefaultSessionFile)
	v.SetDefault(KeyBaseURL, monarch.DefaultBaseURL)
	v.SetDefault(KeyHTTPTimeout, defaultHTTPTimeout)
	v.SetDefault(KeyRetryDelay, service.DefaultRetryDelay)
	v.SetDefault(KeyReportBalances, report.DefaultBalancesPath)
	v.SetDefault(KeyReportBalancesHistory, report.DefaultBalancesHistoryPath)
	v.SetDefault(KeyReportTransactions, report.DefaultTransactionsPath)
	v.SetDefault(KeyReportPortfolio, report.DefaultPortfolioPath)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// BindEnv makes every key readable from MONARCH_* environment variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix("MONARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the configuration from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Username:    v.GetString(KeyUsername),
		Password:    v.GetString(KeyPassword),
		MFASecret:   v.GetString(KeyMFASecret),
		SessionFile: ExpandPath(v.GetString(KeySessionFile)),
		BaseURL:     v.GetString(KeyBaseURL),
		HTTPTimeout: v.GetDuration(KeyHTTPTimeout),
		RetryDelay:  v.GetDuration(KeyRetryDelay),
		LogLevel:    v.GetString(KeyLogLevel),
		LogFormat:   v.GetString(KeyLogFormat),
		Reports: report.Paths{
			Balances:        ExpandPath(v.GetString(KeyReportBalances)),
			BalancesHistory: ExpandPath(v.GetString(KeyReportBalancesHistory)),
			Transactions:    ExpandPath(v.GetString(KeyReportTransactions)),
			Portfolio:       ExpandPath(v.GetString(KeyReportPortfolio)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing credential at once, then checks the rest.
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{KeyUsername, c.Username},
		{KeyPassword, c.Password},
		{KeyMFASecret, c.MFASecret},
	}

	var errs []error
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%w: --%s is required (%s)", common.ErrMissingConfig, r.key, requiredCredentialsReason))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if err := c.Reports.Validate(); err != nil {
		return err
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay must not be negative, got %s", common.ErrInvalidConfig, c.RetryDelay)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: http timeout must be positive, got %s", common.ErrInvalidConfig, c.HTTPTimeout)
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Monarch returns the client configuration.
func (c *Config) Monarch() monarch.Config {
	return monarch.Config{
		BaseURL:     c.BaseURL,
		Username:    c.Username,
		Password:    c.Password,
		MFASecret:   c.MFASecret,
		SessionFile: c.SessionFile,
		HTTPTimeout: c.HTTPTimeout,
	}
}

// Retry returns the unauthorized-retry options.
func (c *Config) Retry() service.RetryOptions {
	return service.RetryOptions{Delay: c.RetryDelay}
}
