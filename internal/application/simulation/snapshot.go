package simulation

import (
	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/domain/events"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
)

// Snapshots serializes every structure storage and worker inventory.
// Structures come first in handle order, then workers in creation order.
func (e *Engine) Snapshots() []common.LedgerSnapshot {
	now := e.clock.Now()
	var out []common.LedgerSnapshot
	for _, ref := range e.world.AllStructures() {
		out = append(out, common.LedgerSnapshot{
			Owner:   events.Owner{Type: events.OwnerStructure, Key: ref.Key()},
			Amounts: ref.Storage().Serialize(),
			SavedAt: now,
		})
	}
	for _, a := range e.directory.All() {
		out = append(out, common.LedgerSnapshot{
			Owner:   events.Owner{Type: events.OwnerWorker, Key: a.ID()},
			Amounts: a.Carried().Serialize(),
			SavedAt: now,
		})
	}
	return out
}

// Restore loads snapshots into the matching live ledgers. Owners that no
// longer exist are skipped. Returns how many ledgers were restored.
func (e *Engine) Restore(snapshots []common.LedgerSnapshot) int {
	restored := 0
	for _, snap := range snapshots {
		values := toSigned(snap.Amounts, e.catalog)
		switch snap.Owner.Type {
		case events.OwnerStructure:
			if _, st, ok := e.world.StructureByKey(snap.Owner.Key); ok {
				st.Storage().Deserialize(values)
				restored++
			}
		case events.OwnerWorker:
			if a, ok := e.directory.Get(snap.Owner.Key); ok {
				a.Carried().Deserialize(values)
				restored++
			}
		}
	}
	e.logger.Info("ledgers restored", "count", restored, "offered", len(snapshots))
	return restored
}

// toSigned drops kinds the catalog no longer knows so that a stale save
// cannot trip the unknown-kind guard
func toSigned(amounts map[resource.Kind]uint32, catalog *resource.Catalog) map[resource.Kind]int {
	out := make(map[resource.Kind]int, len(amounts))
	for k, v := range amounts {
		if catalog.Has(k) {
			out[k] = int(v)
		}
	}
	return out
}
