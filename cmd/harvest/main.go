// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the harvest CLI: browsing, filtering,
// importing, and bookmarking papers in the Harvest For Good research
// repository.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/harvest/internal/api"
	"github.com/pdiddy/harvest/internal/logging"
	"github.com/pdiddy/harvest/internal/secrets"
	"github.com/pdiddy/harvest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets secrets.Secrets

	// logger is built from the logging config before any command runs.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Browse, filter, and import Harvest For Good research papers",
	Long: `harvest is a client for the Harvest For Good research repository. It lists
and searches papers on the server, filters exported collections locally,
bulk-imports papers from CSV, JSON, or BibTeX files, and keeps a list of
saved papers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log, err := logging.New(loggingConfig())
		if err != nil {
			return err
		}
		logger = log

		s, err := secrets.Load(viper.GetString("secrets_dir"), logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./harvest.yaml or ~/.config/harvest/harvest.yaml)")
	rootCmd.PersistentFlags().String("base-url", "", "API root (default "+api.DefaultBaseURL+")")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.SetDefault("api.base_url", api.DefaultBaseURL)
	viper.SetDefault("api.timeout", 30*time.Second)
	viper.SetDefault("api.user_agent", "harvest/0.1")
	viper.SetDefault("api.max_retries", 5)
	viper.SetDefault("browse.page_size", 12)
	viper.SetDefault("browse.remote_page_size", 10)
	viper.SetDefault("browse.debounce", 300*time.Millisecond)
	viper.SetDefault("saved.backend", string(types.SavedSQLite))
	viper.SetDefault("saved.dir", defaultSavedDir())
	viper.SetDefault("saved.user_id", "")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("secrets_dir", ".secrets/")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("harvest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "harvest"))
		}
	}

	viper.SetEnvPrefix("HARVEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func defaultSavedDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "harvest")
	}
	return ".harvest"
}

// loadConfig reads the effective configuration from viper.
func loadConfig() types.Config {
	return types.Config{
		API: types.HTTPConfig{
			BaseURL:    viper.GetString("api.base_url"),
			Timeout:    viper.GetDuration("api.timeout"),
			UserAgent:  viper.GetString("api.user_agent"),
			MaxRetries: viper.GetInt("api.max_retries"),
			Token:      loadedSecrets.APIToken(),
		},
		Browse: types.BrowseConfig{
			PageSize:       viper.GetInt("browse.page_size"),
			RemotePageSize: viper.GetInt("browse.remote_page_size"),
			Debounce:       viper.GetDuration("browse.debounce"),
		},
		Saved: types.SavedConfig{
			Backend: types.SavedBackend(viper.GetString("saved.backend")),
			Dir:     viper.GetString("saved.dir"),
			UserID:  viper.GetString("saved.user_id"),
		},
		Logging: loggingConfig(),
	}
}

func loggingConfig() types.LoggingConfig {
	return types.LoggingConfig{
		Level:  viper.GetString("logging.level"),
		Format: viper.GetString("logging.format"),
	}
}

// newClient builds an API client from the effective configuration.
func newClient(cfg types.HTTPConfig) *api.Client {
	return api.NewClient(cfg.BaseURL,
		api.WithTimeout(cfg.Timeout),
		api.WithUserAgent(cfg.UserAgent),
		api.WithMaxRetries(cfg.MaxRetries),
		api.WithToken(secretDefault(cfg.Token, viper.GetString("api.token"))),
		api.WithLogger(logger.Named("api")),
	)
}

// secretDefault returns value when set, otherwise fallback.
func secretDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

// userError turns a failure into the message shown to the user. Backend
// and network details go to the log.
func userError(err error) error {
	if err == nil {
		return nil
	}
	logger.Debug("command failed", zap.Error(err))
	return errors.New(api.UserMessage(err))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
