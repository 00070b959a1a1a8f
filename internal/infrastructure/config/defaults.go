package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "colony.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "colony"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "colony"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 10
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 2
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Simulation defaults
	sim := &cfg.Simulation
	if sim.Width == 0 {
		sim.Width = 64
	}
	if sim.Height == 0 {
		sim.Height = 64
	}
	if sim.Seed == 0 {
		sim.Seed = 1
	}
	if sim.FrameInterval == 0 {
		sim.FrameInterval = 50 * time.Millisecond
	}
	if sim.PathIterationsPerTick == 0 {
		sim.PathIterationsPerTick = 2000
	}
	if sim.HousekeepingInterval == 0 {
		sim.HousekeepingInterval = 5 * time.Second
	}
	if sim.AutosaveInterval == 0 {
		sim.AutosaveInterval = time.Minute
	}
	if sim.JournalBuffer == 0 {
		sim.JournalBuffer = 10000
	}
	if sim.ProfessionsPath == "" {
		sim.ProfessionsPath = "configs/professions.yaml"
	}
	if sim.Worker.TickInterval == 0 {
		sim.Worker.TickInterval = 500 * time.Millisecond
	}
	if sim.Worker.WaitCooldown == 0 {
		sim.Worker.WaitCooldown = 3 * time.Second
	}
	if sim.Worker.DepositDuration == 0 {
		sim.Worker.DepositDuration = time.Second
	}
	if sim.Worker.BlacklistClearInterval == 0 {
		sim.Worker.BlacklistClearInterval = 30 * time.Second
	}
	if sim.Worker.FallbackRadius == 0 {
		sim.Worker.FallbackRadius = 2
	}
	if sim.Worker.NoTargetLogInterval == 0 {
		sim.Worker.NoTargetLogInterval = 30 * time.Second
	}
	if sim.Terrain.Scale == 0 {
		sim.Terrain.Scale = 0.1
	}
	if sim.Terrain.Margin == 0 {
		sim.Terrain.Margin = 2
	}

	// Daemon defaults
	if cfg.Daemon.SocketPath == "" {
		cfg.Daemon.SocketPath = "/tmp/colony-daemon.sock"
	}
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/colony-daemon.pid"
	}
	if cfg.Daemon.EventsPath == "" {
		cfg.Daemon.EventsPath = "/events"
	}
	if cfg.Daemon.HealthCheckInterval == 0 {
		cfg.Daemon.HealthCheckInterval = 30 * time.Second
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Daemon.RestartPolicy.MaxAttempts == 0 {
		cfg.Daemon.RestartPolicy.MaxAttempts = 3
	}
	if cfg.Daemon.RestartPolicy.Delay == 0 {
		cfg.Daemon.RestartPolicy.Delay = 2 * time.Second
	}
	if cfg.Daemon.RestartPolicy.BackoffMultiplier == 0 {
		cfg.Daemon.RestartPolicy.BackoffMultiplier = 2.0
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
