// Package components defines ECS components for the simulation.
package components

// Seat binds an agent entity to its controller and fitness accumulator.
// Slot is the index of the controller in the evaluated population.
type Seat struct {
	Slot int
}
