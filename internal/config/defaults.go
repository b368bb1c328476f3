package config

const (
	defaultBaseURL          = "https://api.kai.chat"
	defaultStateDir         = "~/.local/share/kai"
	defaultLogDir           = "~/.local/share/kai/logs"
	defaultRequestTimeout   = 30
	defaultUploadTimeout    = 300
	defaultQueueCapacity    = 100
	defaultMaxUploadRetries = 3
	defaultOrigin           = "web"
	defaultDrainInterval    = 30
	defaultBackoffMax       = 600
	defaultDrainBatchSize   = 50
	defaultAgentBind        = "127.0.0.1:7411"
	defaultNtfyTimeout      = 10
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			BaseURL:        defaultBaseURL,
			RequestTimeout: defaultRequestTimeout,
			UploadTimeout:  defaultUploadTimeout,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Queue: Queue{
			Capacity:         defaultQueueCapacity,
			MaxUploadRetries: defaultMaxUploadRetries,
			Origin:           defaultOrigin,
		},
		Sync: Sync{
			DrainInterval:  defaultDrainInterval,
			BackoffMax:     defaultBackoffMax,
			DrainBatchSize: defaultDrainBatchSize,
		},
		Agent: Agent{
			Bind: defaultAgentBind,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
			DrainResults:   true,
			SessionExpiry:  true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
