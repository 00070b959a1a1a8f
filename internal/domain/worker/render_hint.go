package worker

import "github.com/andrescamacho/colony-go/internal/domain/resource"

// RenderHint tells a presentation layer what to draw for a worker. It carries
// no behaviour; the state machine never reads it back.
type RenderHint struct {
	Animation string
	Item      resource.Kind // empty when nothing is shown in hand
}

func (h RenderHint) String() string {
	if h.Item == "" {
		return h.Animation
	}
	return h.Animation + ":" + string(h.Item)
}

// RenderHintFor derives the hint from a state and a snapshot of the carried
// inventory. The item shown is the most plentiful carried kind, ties going to
// the lexically smaller kind.
func RenderHintFor(state State, carried map[resource.Kind]uint32) RenderHint {
	item := dominantKind(carried)

	switch state {
	case MovingToHarvest:
		return RenderHint{Animation: "walk"}
	case Harvesting:
		return RenderHint{Animation: "work"}
	case MovingToDeposit:
		return RenderHint{Animation: "carry", Item: item}
	case Depositing:
		return RenderHint{Animation: "drop", Item: item}
	case Waiting:
		return RenderHint{Animation: "wait", Item: item}
	default:
		return RenderHint{Animation: "idle", Item: item}
	}
}

func dominantKind(carried map[resource.Kind]uint32) resource.Kind {
	var best resource.Kind
	var bestAmount uint32
	for k, v := range carried {
		if v == 0 {
			continue
		}
		if v > bestAmount || (v == bestAmount && k < best) {
			best, bestAmount = k, v
		}
	}
	return best
}
