package config

// MetricsConfig holds the HTTP surface that exposes metrics, health and the
// event stream
type MetricsConfig struct {
	// Enabled controls whether metrics collection and the HTTP server are active
	Enabled bool `mapstructure:"enabled"`

	// Port for the HTTP server
	Port int `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`

	// Host to bind the HTTP server (default: localhost)
	Host string `mapstructure:"host"`

	// Path for the Prometheus endpoint (default: /metrics)
	Path string `mapstructure:"path"`
}
