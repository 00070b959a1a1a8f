package config

import "time"

// SimulationConfig holds the colony engine settings
type SimulationConfig struct {
	// Map size in tiles; a scenario file may override it
	Width  int   `mapstructure:"width" validate:"min=1,max=4096"`
	Height int   `mapstructure:"height" validate:"min=1,max=4096"`
	Seed   int64 `mapstructure:"seed"`

	FrameInterval         time.Duration `mapstructure:"frame_interval" validate:"required"`
	PathIterationsPerTick int           `mapstructure:"path_iterations_per_tick" validate:"min=0"`
	HousekeepingInterval  time.Duration `mapstructure:"housekeeping_interval" validate:"required"`
	AutosaveInterval      time.Duration `mapstructure:"autosave_interval"`
	JournalBuffer         int           `mapstructure:"journal_buffer" validate:"min=1"`

	Worker WorkerConfig `mapstructure:"worker"`

	// Data files
	CatalogPath     string `mapstructure:"catalog_path"`
	ProfessionsPath string `mapstructure:"professions_path" validate:"required"`
	ScenarioPath    string `mapstructure:"scenario_path"`

	// Perlin rock field generated on top of the scenario; zero threshold disables it
	Terrain TerrainConfig `mapstructure:"terrain"`
}

// WorkerConfig holds the timings shared by every worker agent
type WorkerConfig struct {
	TickInterval           time.Duration `mapstructure:"tick_interval" validate:"required"`
	WaitCooldown           time.Duration `mapstructure:"wait_cooldown" validate:"required"`
	DepositDuration        time.Duration `mapstructure:"deposit_duration"`
	BlacklistClearInterval time.Duration `mapstructure:"blacklist_clear_interval" validate:"required"`
	FallbackRadius         int           `mapstructure:"fallback_radius" validate:"min=0,max=16"`
	NoTargetLogInterval    time.Duration `mapstructure:"no_target_log_interval"`
}

// TerrainConfig drives noise-based obstruction zones
type TerrainConfig struct {
	Threshold float64 `mapstructure:"threshold" validate:"min=0,max=1"`
	Scale     float64 `mapstructure:"scale" validate:"min=0"`
	// Tiles around scenario structures and workers that stay clear
	Margin int `mapstructure:"margin" validate:"min=0"`
}
