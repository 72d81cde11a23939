package neat

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenome(t *testing.T, config *GenomeConfig, counter *InnovationCounter, seed int64) *Genome {
	t.Helper()
	return NewGenome(counter, config, WithRand(rand.New(rand.NewSource(seed))))
}

func neuronMarkings(g *Genome) []uint32 {
	var out []uint32
	for _, n := range g.Neurons() {
		out = append(out, n.Innovation())
	}
	return out
}

func connectionMarkings(g *Genome) []uint32 {
	var out []uint32
	for _, c := range g.Connections() {
		out = append(out, c.Innovation())
	}
	return out
}

func TestNewGenome(t *testing.T) {
	config := DefaultGenomeConfig(2, 2)
	counter := NewInnovationCounter(config.NumNeurons())

	genome := newTestGenome(t, &config, counter, 1)

	assert.Equal(t, []uint32{0, 1, 2, 3}, neuronMarkings(genome))
	assert.Equal(t, 0, genome.NumConnections())
	for _, n := range genome.Neurons() {
		if n.Innovation() < 2 {
			assert.True(t, n.Class().IsSensor())
		} else {
			assert.True(t, n.Class().IsOutput())
		}
	}

	config.InitialConnected = true
	genome = newTestGenome(t, &config, counter, 2)

	require.Equal(t, 4, genome.NumConnections())
	assert.Equal(t, []uint32{4, 5, 6, 7}, connectionMarkings(genome))

	wantPairs := []ConnectionKey{{0, 2}, {0, 3}, {1, 2}, {1, 3}}
	for i, c := range genome.Connections() {
		assert.Equal(t, wantPairs[i], ConnectionKey{In: c.In(), Out: c.Out()})
		assert.True(t, c.Enabled())
		assert.GreaterOrEqual(t, c.Weight(), -3.0)
		assert.Less(t, c.Weight(), 3.0)
	}
}

func TestNewGenomeSharesMarkings(t *testing.T) {
	config := DefaultGenomeConfig(3, 1)
	config.InitialConnected = true
	counter := NewInnovationCounter(config.NumNeurons())

	g1 := newTestGenome(t, &config, counter, 1)
	g2 := newTestGenome(t, &config, counter, 2)

	assert.Equal(t, connectionMarkings(g1), connectionMarkings(g2))
	assert.Equal(t, uint32(7), counter.Next())
}

func TestNewGenomeFixedWeight(t *testing.T) {
	config := DefaultGenomeConfig(2, 1)
	config.InitialConnected = true
	config.WeightIsRandom = false
	config.DefaultWeight = 0.5

	genome := newTestGenome(t, &config, NewInnovationCounter(config.NumNeurons()), 1)

	for _, c := range genome.Connections() {
		assert.Equal(t, 0.5, c.Weight())
	}
}

func TestGenomeLookups(t *testing.T) {
	config := DefaultGenomeConfig(1, 1)
	config.InitialConnected = true
	genome := newTestGenome(t, &config, NewInnovationCounter(config.NumNeurons()), 1)

	n, ok := genome.Neuron(1)
	require.True(t, ok)
	assert.Equal(t, OutputClass, n.Class())

	c, ok := genome.Connection(2)
	require.True(t, ok)
	assert.Equal(t, uint32(0), c.In())
	assert.Equal(t, uint32(1), c.Out())

	_, ok = genome.Neuron(2)
	assert.False(t, ok)
	_, ok = genome.Connection(0)
	assert.False(t, ok)

	assert.Contains(t, genome.String(), "Neurons: 2, Connections: 1")
}

func TestCloneIsIndependent(t *testing.T) {
	config := DefaultGenomeConfig(2, 2)
	config.InitialConnected = true
	counter := NewInnovationCounter(config.NumNeurons())
	genome := newTestGenome(t, &config, counter, 1)

	clone := genome.Clone()
	require.Equal(t, genome.Connections(), clone.Connections())
	require.Equal(t, genome.Neurons(), clone.Neurons())
	assert.Same(t, genome.Counter(), clone.Counter())

	require.True(t, clone.mutateCreateNeuron())
	assert.Equal(t, 4, genome.NumNeurons())
	assert.Equal(t, 5, clone.NumNeurons())
	for _, c := range genome.Connections() {
		assert.True(t, c.Enabled())
	}
}

func TestCrossoverAndDistanceNotSupported(t *testing.T) {
	config := DefaultGenomeConfig(1, 1)
	counter := NewInnovationCounter(config.NumNeurons())
	a := newTestGenome(t, &config, counter, 1)
	b := newTestGenome(t, &config, counter, 2)

	child, err := Crossover(a, b)
	assert.Nil(t, child)
	assert.True(t, errors.Is(err, ErrNotSupported))

	_, err = a.Distance(b)
	assert.ErrorIs(t, err, ErrNotSupported)
}

func TestNeuronClass(t *testing.T) {
	assert.True(t, SensorClass < Midpoint(SensorClass, OutputClass))
	assert.True(t, Midpoint(SensorClass, OutputClass) < OutputClass)
	assert.Equal(t, NeuronClass(2147483647), Midpoint(SensorClass, OutputClass))
	assert.Equal(t, NeuronClass(3221225471), Midpoint(Midpoint(SensorClass, OutputClass), OutputClass))

	assert.True(t, Midpoint(SensorClass, OutputClass).IsHidden())
	assert.False(t, SensorClass.IsHidden())
	assert.False(t, OutputClass.IsHidden())

	assert.Equal(t, "sensor", SensorClass.String())
	assert.Equal(t, "output", OutputClass.String())
	assert.Equal(t, "hidden(10)", NeuronClass(10).String())
}

func TestNewGenomeReadsNegativeCountsAsZero(t *testing.T) {
	config := DefaultGenomeConfig(-3, 2)
	config.InitialConnected = true
	assert.Equal(t, uint32(2), config.NumNeurons())

	genome := newTestGenome(t, &config, NewInnovationCounter(config.NumNeurons()), 1)
	assert.Equal(t, []uint32{0, 1}, neuronMarkings(genome))
	for _, n := range genome.Neurons() {
		assert.True(t, n.Class().IsOutput())
	}
	assert.Equal(t, 0, genome.NumConnections())

	config = DefaultGenomeConfig(2, -1)
	genome = newTestGenome(t, &config, NewInnovationCounter(config.NumNeurons()), 1)
	assert.Equal(t, 2, genome.NumNeurons())
}
