package metrics

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/colony-go/internal/domain/events"
)

// Sample is a point-in-time view of the colony used to refresh gauges
type Sample struct {
	WorkersByState map[string]int
	Stock          map[string]uint32
	Structures     int
	Assignments    int
	PendingPaths   int
	Timers         int
	GridVersion    uint64
}

// SampleFunc produces a Sample; the daemon reads it through the engine loop
type SampleFunc func(ctx context.Context) (Sample, error)

// SimulationMetricsCollector exports the colony's behaviour.
//
// Counters are driven by bus events (HandleEvent) and by the path and tick
// hooks the engine exposes. Gauges are refreshed by polling a SampleFunc on
// an interval once Start is called.
type SimulationMetricsCollector struct {
	sample       SampleFunc
	pollInterval time.Duration
	logger       *log.Logger

	// Event counters
	stateTransitions *prometheus.CounterVec
	resourceFlow     *prometheus.CounterVec
	targetsDestroyed *prometheus.CounterVec
	gridRebuilds     *prometheus.CounterVec
	workerLifecycle  *prometheus.CounterVec

	pathQueries    *prometheus.CounterVec
	pathIterations prometheus.Histogram
	tickDuration   prometheus.Histogram

	autosaves *prometheus.CounterVec
	restarts  prometheus.Counter

	// Gauges
	workers      *prometheus.GaugeVec
	stock        *prometheus.GaugeVec
	structures   prometheus.Gauge
	assignments  prometheus.Gauge
	pendingPaths prometheus.Gauge
	timers       prometheus.Gauge
	gridVersion  prometheus.Gauge

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewSimulationMetricsCollector creates the collector. sample may be nil, in
// which case Start only waits for cancellation.
func NewSimulationMetricsCollector(sample SampleFunc, pollInterval time.Duration, logger *log.Logger) *SimulationMetricsCollector {
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &SimulationMetricsCollector{
		sample:       sample,
		pollInterval: pollInterval,
		logger:       logger,

		stateTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "worker_state_transitions_total",
				Help:      "Worker state machine transitions",
			},
			[]string{"from", "to"},
		),
		resourceFlow: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "resource_units_total",
				Help:      "Resource units moved in or out of ledgers",
			},
			[]string{"owner_type", "kind", "direction"},
		),
		targetsDestroyed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "targets_destroyed_total",
				Help:      "Harvestable entities destroyed by workers",
			},
			[]string{"kind"},
		),
		gridRebuilds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "grid_rebuilds_total",
				Help:      "Walkability grid rebuilds by reason",
			},
			[]string{"reason"},
		),
		workerLifecycle: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "worker_lifecycle_total",
				Help:      "Workers spawned and removed",
			},
			[]string{"event", "reason"},
		),
		pathQueries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "path_queries_total",
				Help:      "Finished path queries by outcome",
			},
			[]string{"outcome"},
		),
		pathIterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "path_iterations",
				Help:      "Search iterations spent per path query",
				Buckets:   prometheus.ExponentialBuckets(4, 4, 8),
			},
		),
		tickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tick_duration_seconds",
				Help:      "Wall time spent advancing one frame",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
			},
		),
		autosaves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "autosaves_total",
				Help:      "Ledger snapshot saves by status",
			},
			[]string{"status"},
		),
		restarts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "loop_restarts_total",
				Help:      "Simulation loop restarts after a failure",
			},
		),

		workers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "workers",
				Help:      "Live workers by state",
			},
			[]string{"state"},
		),
		stock: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "stock_units",
				Help:      "Units held across all structures by kind",
			},
			[]string{"kind"},
		),
		structures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "structures", Help: "Placed structures",
		}),
		assignments: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "assignments", Help: "Active worker assignments",
		}),
		pendingPaths: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "pending_path_queries", Help: "Path queries waiting for budget",
		}),
		timers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "scheduled_timers", Help: "Timers waiting in the scheduler",
		}),
		gridVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "grid_version", Help: "Version of the current walkability grid",
		}),
	}
}

// Register registers all simulation metrics with the Prometheus registry
func (c *SimulationMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	for _, metric := range c.collectors() {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

func (c *SimulationMetricsCollector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.stateTransitions,
		c.resourceFlow,
		c.targetsDestroyed,
		c.gridRebuilds,
		c.workerLifecycle,
		c.pathQueries,
		c.pathIterations,
		c.tickDuration,
		c.autosaves,
		c.restarts,
		c.workers,
		c.stock,
		c.structures,
		c.assignments,
		c.pendingPaths,
		c.timers,
		c.gridVersion,
	}
}

// HandleEvent updates counters from a bus event. Subscribe it on the bus.
func (c *SimulationMetricsCollector) HandleEvent(e events.Event) {
	switch ev := e.(type) {
	case events.WorkerStateChanged:
		c.stateTransitions.WithLabelValues(ev.From, ev.To).Inc()
	case events.ResourceChanged:
		if ev.Delta == 0 {
			return
		}
		direction, amount := "in", float64(ev.Delta)
		if ev.Delta < 0 {
			direction, amount = "out", float64(-ev.Delta)
		}
		c.resourceFlow.WithLabelValues(string(ev.Owner.Type), string(ev.Kind), direction).Add(amount)
	case events.TargetDestroyed:
		c.targetsDestroyed.WithLabelValues(string(ev.Kind)).Inc()
	case events.GridRebuilt:
		c.gridRebuilds.WithLabelValues(ev.Reason).Inc()
	case events.WorkerSpawned:
		c.workerLifecycle.WithLabelValues("spawned", "").Inc()
	case events.WorkerRemoved:
		c.workerLifecycle.WithLabelValues("removed", ev.Reason).Inc()
	}
}

// ObservePath matches pathfinding.OutcomeHook
func (c *SimulationMetricsCollector) ObservePath(found bool, iterations int) {
	outcome := "found"
	if !found {
		outcome = "unreachable"
	}
	c.pathQueries.WithLabelValues(outcome).Inc()
	c.pathIterations.Observe(float64(iterations))
}

// ObserveTick records how long one frame took
func (c *SimulationMetricsCollector) ObserveTick(elapsed time.Duration) {
	c.tickDuration.Observe(elapsed.Seconds())
}

// RecordAutosave records a snapshot save
func (c *SimulationMetricsCollector) RecordAutosave(ledgers int, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	c.autosaves.WithLabelValues(status).Inc()
	c.logger.Debug("recorded autosave", "ledgers", ledgers, "status", status)
}

// RecordRestart records a loop restart
func (c *SimulationMetricsCollector) RecordRestart(attempt int) {
	c.restarts.Inc()
	c.logger.Debug("recorded loop restart", "attempt", attempt)
}

// Start begins polling the sample function
func (c *SimulationMetricsCollector) Start(ctx context.Context) {
	c.ctx, c.cancelFunc = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.collectSamples()
}

// Stop gracefully stops the polling goroutine
func (c *SimulationMetricsCollector) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
}

func (c *SimulationMetricsCollector) collectSamples() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.Refresh(c.ctx)
		}
	}
}

// Refresh pulls one sample and updates the gauges
func (c *SimulationMetricsCollector) Refresh(ctx context.Context) {
	if c.sample == nil {
		return
	}
	s, err := c.sample(ctx)
	if err != nil {
		c.logger.Warn("failed to sample colony for metrics", "error", err)
		return
	}
	c.Apply(s)
}

// Apply sets the gauges from s
func (c *SimulationMetricsCollector) Apply(s Sample) {
	// reset so states and kinds that vanished drop to absent
	c.workers.Reset()
	for state, n := range s.WorkersByState {
		c.workers.WithLabelValues(state).Set(float64(n))
	}
	c.stock.Reset()
	for kind, n := range s.Stock {
		c.stock.WithLabelValues(kind).Set(float64(n))
	}
	c.structures.Set(float64(s.Structures))
	c.assignments.Set(float64(s.Assignments))
	c.pendingPaths.Set(float64(s.PendingPaths))
	c.timers.Set(float64(s.Timers))
	c.gridVersion.Set(float64(s.GridVersion))
}
