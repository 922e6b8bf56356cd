package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"stemzipper/internal/config"
	"stemzipper/internal/i18n"
	"stemzipper/internal/logging"
	"stemzipper/internal/packerr"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = packerr.Wrap(packerr.ErrConfiguration, "config", "load", path, err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = packerr.Wrap(packerr.ErrConfiguration, "config", "ensure directories", "", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds a logger from the configuration. quietLevel replaces the
// configured level unless --log-level was given; pass "" to keep it.
func (c *commandContext) logger(quietLevel string) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	if quietLevel != "" {
		level = quietLevel
	}
	if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
		level = strings.TrimSpace(*c.logLevelFlag)
	}
	tuned := *cfg
	tuned.Logging.Level = level
	return logging.NewFromConfig(&tuned)
}

func (c *commandContext) translator() *i18n.Translator {
	cfg, err := c.ensureConfig()
	if err != nil || cfg == nil {
		return i18n.New(i18n.DefaultLocale)
	}
	return i18n.New(cfg.Display.Locale)
}

// applyMaxSize applies a --max-size override and returns the localized
// warning when the value had to be clamped.
func applyMaxSize(cmd *cobra.Command, cfg *config.Config, tr *i18n.Translator, value int) string {
	if !cmd.Flags().Changed("max-size") {
		return ""
	}
	if msg := cfg.SetMaxSizeMB(value); msg == "" {
		return ""
	}
	return tr.T("msg_invalid_max_size", i18n.Params{
		"max":   config.MaxSizeLimitMB,
		"reset": cfg.Packing.MaxSizeMB,
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
