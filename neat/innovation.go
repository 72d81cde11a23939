package neat

import (
	"maps"
	"sync"
)

// ConnectionKey identifies a directed neuron pair by their markings.
type ConnectionKey struct {
	In  uint32
	Out uint32
}

// InnovationCounter hands out historical markings for a whole population.
// Neurons and connections draw from the same monotonically increasing
// counter. A connection between a given ordered (in, out) pair always gets the
// marking issued the first time that pair was requested, so structurally
// identical mutations in different genomes share a marking.
//
// One InnovationCounter is shared by every genome of a population and is safe
// for concurrent use.
type InnovationCounter struct {
	mu          sync.Mutex
	next        uint32
	connections map[ConnectionKey]uint32
}

// NewInnovationCounter creates a counter whose first issued marking is
// numNeurons, the number of neurons every genome is created with.
func NewInnovationCounter(numNeurons uint32) *InnovationCounter {
	return &InnovationCounter{
		next:        numNeurons,
		connections: make(map[ConnectionKey]uint32),
	}
}

// ConnectionInnovation returns the marking of the connection in -> out,
// issuing a fresh one the first time the pair is seen.
func (c *InnovationCounter) ConnectionInnovation(in, out uint32) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := ConnectionKey{In: in, Out: out}
	if innovation, ok := c.connections[key]; ok {
		return innovation
	}
	innovation := c.next
	c.connections[key] = innovation
	c.next++
	return innovation
}

// NeuronInnovation always issues a fresh marking.
func (c *InnovationCounter) NeuronInnovation() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	innovation := c.next
	c.next++
	return innovation
}

// Next returns the marking the next request will issue, without issuing it.
func (c *InnovationCounter) Next() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}

// CounterState is a point-in-time copy of an InnovationCounter, used for
// checkpoints.
type CounterState struct {
	Next        uint32
	Connections map[ConnectionKey]uint32
}

// State returns a copy of the counter's state.
func (c *InnovationCounter) State() CounterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CounterState{
		Next:        c.next,
		Connections: maps.Clone(c.connections),
	}
}

// RestoreInnovationCounter rebuilds a counter from a saved state.
func RestoreInnovationCounter(state CounterState) *InnovationCounter {
	connections := maps.Clone(state.Connections)
	if connections == nil {
		connections = make(map[ConnectionKey]uint32)
	}
	return &InnovationCounter{
		next:        state.Next,
		connections: connections,
	}
}
