package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"subnode/internal/config"
	"subnode/internal/logging"
	"subnode/internal/node"
	"subnode/internal/pipeline"
)

type commandContext struct {
	configFlag   string
	logLevelFlag string

	// deps overrides the external tools; tests inject fakes here.
	deps pipeline.Dependencies

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if level := strings.TrimSpace(c.logLevelFlag); level != "" {
			cfg.Logging.Level = level
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		if c.deps.Logger != nil {
			c.logger = c.deps.Logger
			return
		}
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// newPipeline wires the pipeline from configuration. Callers must Close it.
func (c *commandContext) newPipeline() (*pipeline.Pipeline, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	deps := c.deps
	deps.Logger = logger
	p, err := pipeline.NewFromConfig(cfg, deps)
	if err != nil {
		return nil, nil, err
	}
	return p, logger, nil
}

// registry builds the node registry backed by p.
func registry(p *pipeline.Pipeline) *node.Registry {
	return node.NewDefaultRegistry(p)
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
