package stream

import (
	"time"

	"github.com/andrescamacho/colony-go/internal/domain/events"
)

// Message is the JSON envelope pushed to stream clients
type Message struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data"`
}

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Encode converts a bus event into its wire form. Unknown events keep their
// name and carry no data.
func Encode(e events.Event, at time.Time) Message {
	msg := Message{Type: e.EventName(), At: at}

	switch ev := e.(type) {
	case events.WorkerStateChanged:
		msg.Data = map[string]any{
			"worker":   ev.AgentID,
			"from":     ev.From,
			"to":       ev.To,
			"position": point{ev.Position.X, ev.Position.Y},
			"hint":     ev.Hint,
		}
	case events.WorkerMoved:
		msg.Data = map[string]any{
			"worker":   ev.AgentID,
			"position": point{ev.Position.X, ev.Position.Y},
		}
	case events.ResourceChanged:
		msg.Data = map[string]any{
			"owner_type": string(ev.Owner.Type),
			"owner":      ev.Owner.Key,
			"kind":       string(ev.Kind),
			"previous":   ev.Previous,
			"new":        ev.New,
			"delta":      ev.Delta,
		}
	case events.TargetDestroyed:
		msg.Data = map[string]any{
			"target": ev.TargetID.String(),
			"kind":   string(ev.Kind),
			"by":     ev.By,
		}
	case events.WorkerSpawned:
		msg.Data = map[string]any{
			"worker":     ev.AgentID,
			"profession": ev.Profession,
			"position":   point{ev.Position.X, ev.Position.Y},
		}
	case events.WorkerRemoved:
		msg.Data = map[string]any{
			"worker": ev.AgentID,
			"reason": ev.Reason,
		}
	case events.GridRebuilt:
		msg.Data = map[string]any{
			"version": ev.Version,
			"reason":  ev.Reason,
			"blocked": ev.Blocked,
		}
	}
	return msg
}
