package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"kai/internal/client"
	"kai/internal/config"
	"kai/internal/logging"
	"kai/internal/outbox"
	"kai/internal/replay"
)

// commandContext lazily wires shared dependencies for the CLI commands.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	clientOnce sync.Once
	client     *client.Client
	clientErr  error

	storeOnce sync.Once
	store     *outbox.Store
	storeErr  error

	managerOnce sync.Once
	manager     *replay.Manager
	managerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, _, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) ensureClient() (*client.Client, error) {
	c.clientOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.clientErr = err
			return
		}
		c.client, c.clientErr = client.NewFromConfig(cfg, c.ensureLogger())
	})
	return c.client, c.clientErr
}

func (c *commandContext) ensureStore() (*outbox.Store, error) {
	c.storeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.storeErr = err
			return
		}
		c.store, c.storeErr = outbox.Open(cfg, c.ensureLogger())
	})
	return c.store, c.storeErr
}

func (c *commandContext) ensureManager() (*replay.Manager, error) {
	c.managerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.managerErr = err
			return
		}
		store, err := c.ensureStore()
		if err != nil {
			c.managerErr = err
			return
		}
		backend, err := c.ensureClient()
		if err != nil {
			c.managerErr = err
			return
		}
		c.manager, c.managerErr = replay.NewManager(cfg, store, backend, c.ensureLogger())
	})
	return c.manager, c.managerErr
}

// close releases resources opened during a command run.
func (c *commandContext) close() {
	if c.store != nil {
		_ = c.store.Close()
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for parent := cmd; parent != nil; parent = parent.Parent() {
		if parent.Annotations != nil && parent.Annotations["skipConfigLoad"] == "true" {
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
