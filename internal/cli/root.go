// Package cli is the storecms console: cobra commands that drive the
// collection controllers and services against the CMS backend.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/storecms/internal/cache"
	"github.com/me/storecms/internal/config"
	"github.com/me/storecms/internal/logging"
	"github.com/me/storecms/internal/service"
	"github.com/me/storecms/internal/session"
	"github.com/me/storecms/pkg/cmsapi"
	"github.com/me/storecms/pkg/model"
)

const optionsTTL = 5 * time.Minute

var (
	flagConfig      string
	flagAPIURL      string
	flagCredentials string
	flagOutput      string
	flagDebug       bool
	flagLogLevel    string
	flagLogFormat   string

	cfg    config.Config
	logger *slog.Logger
	sess   *session.Store
	api    *cmsapi.Client
	nav    *loginNavigator
)

// NewRootCmd creates the root cobra command for the storecms CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "storecms",
		Short: "Storefront CMS console",
		Long:  "storecms manages the products, categories, landing content and assets of a storefront CMS.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flagConfig, "config", config.DefaultPath(), "Config file")
	pf.StringVar(&flagAPIURL, "api-url", "", "CMS backend URL (or STORECMS_API_URL env)")
	pf.StringVar(&flagCredentials, "credentials", "", "Credentials file (default ~/.storecms/credentials.json)")
	pf.StringVarP(&flagOutput, "output", "o", "table", "Output format (table, json)")
	pf.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFormat, "log-format", "", "Log format (text, json)")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newProductsCmd(),
		newCategoriesCmd(),
		newClientsCmd(),
		newBenefitsCmd(),
		newAttributesCmd(),
		newOptionsCmd(),
		newStorefrontCmd(),
		newFilesCmd(),
	)
	return root
}

func setup(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagAPIURL != "" {
		cfg.API.URL = flagAPIURL
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.Log.Format = flagLogFormat
	}
	if flagDebug {
		cfg.Log.Level = "debug"
	}
	logger = logging.NewLoggerWithWriter(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format, cmd.ErrOrStderr())

	path := flagCredentials
	if path == "" {
		if path, err = session.DefaultPath(); err != nil {
			return err
		}
	}
	sess = session.New(path, logger)
	if err := sess.Load(); err != nil {
		logger.Warn("ignoring unreadable credentials", "path", path, "error", err)
	}

	api = cmsapi.NewClient(cfg.API.Client(), sess, logger)
	nav = &loginNavigator{out: cmd.ErrOrStderr()}
	return nil
}

// deps bundles what every service needs.
func deps() service.Deps {
	return service.Deps{API: api, Session: sess, Navigator: nav, Logger: logger}
}

func newOptionService() *service.Options {
	return service.NewOptions(deps(),
		cache.New[[]model.Option](optionsTTL),
		cache.New[[]service.AttributeOption](optionsTTL))
}

// needsAPI makes cmd and its subcommands fail early when no backend is
// configured.
func needsAPI(cmd *cobra.Command) *cobra.Command {
	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		if err := setup(c); err != nil {
			return err
		}
		if cfg.API.URL == "" {
			return fmt.Errorf("no CMS backend configured: pass --api-url or set STORECMS_API_URL")
		}
		return nil
	}
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
