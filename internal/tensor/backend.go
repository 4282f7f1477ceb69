package tensor

// Backend defines the interface that all compute backends must implement.
// A backend contracts operator matrices onto the qubit axes of a state; every
// operator tree evaluation funnels through Apply.
//
// Implementations:
//   - CPU: pure Go contraction with data-parallel outer loops
type Backend interface {
	// Apply contracts m onto the qubits listed in support and returns a new
	// state. The result batch follows BroadcastBatch(state.Batch(), m.Batch()).
	Apply(state *State, m *Matrix, support []int) (*State, error)

	// Name returns the backend name (e.g., "CPU").
	Name() string

	// Device returns the compute device type.
	Device() Device
}
