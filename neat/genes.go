package neat

import (
	"cmp"
	"fmt"
)

// Gene is anything carrying a historical marking.
type Gene interface {
	Innovation() uint32
}

// compareGenes orders genes by innovation number only. Two genes with the same
// innovation number are considered equal regardless of their other attributes.
func compareGenes[T Gene](a, b T) int {
	return cmp.Compare(a.Innovation(), b.Innovation())
}

// --------------------------- NeuronGene ---------------------------

// NeuronGene represents a neuron in the genome. Its class never changes after
// creation.
type NeuronGene struct {
	innovation uint32
	class      NeuronClass
}

// NewNeuronGene creates a neuron gene with the given marking and class.
func NewNeuronGene(innovation uint32, class NeuronClass) NeuronGene {
	return NeuronGene{innovation: innovation, class: class}
}

// Innovation returns the neuron's historical marking.
func (ng NeuronGene) Innovation() uint32 { return ng.innovation }

// Class returns the neuron's class.
func (ng NeuronGene) Class() NeuronClass { return ng.class }

// String returns a string representation of the NeuronGene.
func (ng NeuronGene) String() string {
	return fmt.Sprintf("NeuronGene(Innovation: %d, Class: %s)", ng.innovation, ng.class)
}

// --------------------------- ConnectionGene ---------------------------

// ConnectionGene represents a weighted link between two neurons, identified by
// their markings. Source and target are fixed; weight and enabled state are
// mutated in place.
type ConnectionGene struct {
	innovation uint32
	in         uint32
	out        uint32
	weight     float64
	enabled    bool
}

// NewConnectionGene creates an enabled connection gene.
func NewConnectionGene(innovation, in, out uint32, weight float64) ConnectionGene {
	return ConnectionGene{
		innovation: innovation,
		in:         in,
		out:        out,
		weight:     weight,
		enabled:    true,
	}
}

// Innovation returns the connection's historical marking.
func (cg ConnectionGene) Innovation() uint32 { return cg.innovation }

// In returns the marking of the source neuron.
func (cg ConnectionGene) In() uint32 { return cg.in }

// Out returns the marking of the target neuron.
func (cg ConnectionGene) Out() uint32 { return cg.out }

// Weight returns the connection weight.
func (cg ConnectionGene) Weight() float64 { return cg.weight }

// Enabled reports whether the connection is expressed.
func (cg ConnectionGene) Enabled() bool { return cg.enabled }

// SetWeight replaces the connection weight.
func (cg *ConnectionGene) SetWeight(weight float64) { cg.weight = weight }

// Disable stops the connection from being expressed.
func (cg *ConnectionGene) Disable() { cg.enabled = false }

// ToggleEnabled flips the enabled flag.
func (cg *ConnectionGene) ToggleEnabled() { cg.enabled = !cg.enabled }

// String returns a string representation of the ConnectionGene.
func (cg ConnectionGene) String() string {
	return fmt.Sprintf("ConnGene(Innovation: %d, %d->%d, Weight: %.3f, Enabled: %t)",
		cg.innovation, cg.in, cg.out, cg.weight, cg.enabled)
}
