package metrics

import (
	"context"

	"github.com/andrescamacho/colony-go/internal/application/simulation"
)

// EngineSampler reads a Sample from engine on its loop
func EngineSampler(engine *simulation.Engine) SampleFunc {
	return func(ctx context.Context) (Sample, error) {
		var s Sample
		err := engine.Exec(ctx, func() error {
			st := engine.Status()
			s = Sample{
				WorkersByState: make(map[string]int),
				Stock:          make(map[string]uint32, len(st.Stock)),
				Structures:     st.Structures,
				Assignments:    st.Assignments,
				PendingPaths:   st.PendingPath,
				Timers:         st.Timers,
				GridVersion:    st.GridVersion,
			}
			for _, a := range engine.Directory().All() {
				s.WorkersByState[a.State().String()]++
			}
			for kind, n := range st.Stock {
				s.Stock[string(kind)] = n
			}
			return nil
		})
		return s, err
	}
}
