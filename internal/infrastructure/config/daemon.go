package config

import "time"

// DaemonConfig holds colony daemon configuration
type DaemonConfig struct {
	// Unix socket the gRPC control plane listens on
	SocketPath string `mapstructure:"socket_path" validate:"required"`

	// PID file location
	PIDFile string `mapstructure:"pid_file" validate:"required"`

	// Path of the websocket event stream on the HTTP server
	EventsPath string `mapstructure:"events_path"`

	// How often the liveness probe and housekeeping report health
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval" validate:"required"`

	// Simulation loop restart policy after a tick panic
	RestartPolicy RestartPolicyConfig `mapstructure:"restart_policy"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}

// RestartPolicyConfig controls how the daemon restarts a failed simulation loop
type RestartPolicyConfig struct {
	// Enable automatic restart on failure
	Enabled bool `mapstructure:"enabled"`

	// Maximum restart attempts before giving up
	MaxAttempts int `mapstructure:"max_attempts" validate:"min=0"`

	// Delay before the first restart
	Delay time.Duration `mapstructure:"delay"`

	// Backoff multiplier for retry delays
	BackoffMultiplier float64 `mapstructure:"backoff_multiplier" validate:"min=1"`
}

// DelayFor returns the wait before restart number attempt (1-based)
func (r RestartPolicyConfig) DelayFor(attempt int) time.Duration {
	d := float64(r.Delay)
	for i := 1; i < attempt; i++ {
		d *= r.BackoffMultiplier
	}
	return time.Duration(d)
}
