package worker

// State is the worker's position in its work cycle
type State uint8

const (
	Idle State = iota
	MovingToHarvest
	Harvesting
	MovingToDeposit
	Depositing
	Waiting
)

var stateNames = [...]string{
	Idle:            "idle",
	MovingToHarvest: "moving_to_harvest",
	Harvesting:      "harvesting",
	MovingToDeposit: "moving_to_deposit",
	Depositing:      "depositing",
	Waiting:         "waiting",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// ParseState maps a state name back to a State
func ParseState(name string) (State, bool) {
	for i, n := range stateNames {
		if n == name {
			return State(i), true
		}
	}
	return 0, false
}

// AllStates lists every state in declaration order
func AllStates() []State {
	return []State{Idle, MovingToHarvest, Harvesting, MovingToDeposit, Depositing, Waiting}
}

// IsMoving reports whether the worker is walking a path
func (s State) IsMoving() bool {
	return s == MovingToHarvest || s == MovingToDeposit
}
