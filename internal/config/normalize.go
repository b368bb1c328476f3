package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeServer(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeQueue()
	c.normalizeSync()
	c.normalizeAgent()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeServer() error {
	c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaultBaseURL
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = defaultRequestTimeout
	}
	if c.Server.UploadTimeout <= 0 {
		c.Server.UploadTimeout = defaultUploadTimeout
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeQueue() {
	if c.Queue.Capacity <= 0 {
		c.Queue.Capacity = defaultQueueCapacity
	}
	if c.Queue.MaxUploadRetries <= 0 {
		c.Queue.MaxUploadRetries = defaultMaxUploadRetries
	}
	c.Queue.Origin = strings.ToLower(strings.TrimSpace(c.Queue.Origin))
	if c.Queue.Origin == "" {
		c.Queue.Origin = defaultOrigin
	}
}

func (c *Config) normalizeSync() {
	if c.Sync.DrainInterval <= 0 {
		c.Sync.DrainInterval = defaultDrainInterval
	}
	if c.Sync.BackoffMax <= 0 {
		c.Sync.BackoffMax = defaultBackoffMax
	}
	if c.Sync.DrainBatchSize <= 0 {
		c.Sync.DrainBatchSize = defaultDrainBatchSize
	}
}

func (c *Config) normalizeAgent() {
	c.Agent.Bind = strings.TrimSpace(c.Agent.Bind)
	if c.Agent.Bind == "" {
		c.Agent.Bind = defaultAgentBind
	}
	c.Agent.APIToken = strings.TrimSpace(c.Agent.APIToken)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
