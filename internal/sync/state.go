package sync

// State is the controller's externally observable phase.
type State int

const (
	// StateIdle is the initial state, before the first load.
	StateIdle State = iota
	// StateLoading means a full collection load is in flight.
	StateLoading
	// StateReady means the projection reflects the last completed
	// operation and a page is published.
	StateReady
	// StateMutating means a create, update or delete is in flight.
	StateMutating
	// StateError means the last operation failed; the projection holds
	// its last-known-good contents. Any new operation leaves this state.
	StateError
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateMutating:
		return "mutating"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
