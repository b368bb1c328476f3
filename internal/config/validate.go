package config

import (
	"fmt"
	"net/url"
	"strings"
)

var validOrigins = map[string]struct{}{
	"mobile": {},
	"voice":  {},
	"web":    {},
	"watch":  {},
}

var validLogFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

// Validate checks configuration invariants after normalization.
func (c *Config) Validate() error {
	parsed, err := url.Parse(c.Server.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("server.base_url: %q is not an absolute URL", c.Server.BaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("server.base_url: unsupported scheme %q", parsed.Scheme)
	}

	if _, ok := validOrigins[c.Queue.Origin]; !ok {
		return fmt.Errorf("queue.origin: %q is not one of mobile, voice, web, watch", c.Queue.Origin)
	}

	if _, ok := validLogFormats[c.Logging.Format]; !ok {
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}

	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return fmt.Errorf("paths.state_dir: must not be empty")
	}
	return nil
}
