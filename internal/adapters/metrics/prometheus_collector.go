package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "colony"
	// Subsystem for simulation metrics
	subsystem = "sim"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalSimulationCollector is set by SetGlobalSimulationCollector when metrics are enabled
	globalSimulationCollector SimulationRecorder
)

// SimulationRecorder is what application code needs to record out-of-band simulation events
type SimulationRecorder interface {
	RecordAutosave(ledgers int, success bool)
	RecordRestart(attempt int)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalSimulationCollector sets the global simulation recorder
func SetGlobalSimulationCollector(collector SimulationRecorder) {
	globalSimulationCollector = collector
}

// RecordAutosave records an autosave attempt globally
func RecordAutosave(ledgers int, success bool) {
	if globalSimulationCollector != nil {
		globalSimulationCollector.RecordAutosave(ledgers, success)
	}
}

// RecordRestart records a simulation loop restart globally
func RecordRestart(attempt int) {
	if globalSimulationCollector != nil {
		globalSimulationCollector.RecordRestart(attempt)
	}
}
