package neat

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig(popSize int) *Config {
	config := DefaultConfig(3, 2)
	config.Neat.PopSize = popSize
	config.Neat.Seed = 42
	config.Neat.Workers = 4
	config.Genome.InitialConnected = true
	return config
}

func TestNewPopulation(t *testing.T) {
	pop, err := NewPopulation(testConfig(10))
	require.NoError(t, err)

	assert.Len(t, pop.Genomes, 10)
	assert.NotEmpty(t, pop.RunID)
	assert.Equal(t, 0, pop.Generation)
	// 5 neurons, then 6 shared sensor/output connections
	assert.Equal(t, uint32(11), pop.Counter.Next())

	for _, g := range pop.Genomes {
		assert.Same(t, pop.Counter, g.Counter())
		assert.Equal(t, []uint32{5, 6, 7, 8, 9, 10}, connectionMarkings(g))
	}
}

func TestNewPopulationRejectsInvalidConfig(t *testing.T) {
	config := testConfig(0)
	_, err := NewPopulation(config)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunGenerationConcurrent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	config := testConfig(40)
	config.Genome.CreateConnectionProb = 0.1
	config.Genome.CreateNeuronProb = 0.3

	pop, err := NewPopulation(config, WithLogger(zap.New(core)))
	require.NoError(t, err)

	require.NoError(t, pop.Run(context.Background(), 25))
	assert.Equal(t, 25, pop.Generation)

	pairMarkings := make(map[ConnectionKey]uint32)
	seenNeurons := make(map[uint32]int)
	for gi, g := range pop.Genomes {
		for _, n := range g.Neurons() {
			if n.Class().IsHidden() {
				prev, dup := seenNeurons[n.Innovation()]
				require.False(t, dup, "hidden neuron %d in genomes %d and %d", n.Innovation(), prev, gi)
				seenNeurons[n.Innovation()] = gi
			}
		}
		for _, c := range g.Connections() {
			key := ConnectionKey{In: c.In(), Out: c.Out()}
			if m, ok := pairMarkings[key]; ok {
				require.Equal(t, m, c.Innovation())
			}
			pairMarkings[key] = c.Innovation()
		}
	}

	assert.Equal(t, 25, logs.FilterMessage("generation finished").Len())
	assert.Equal(t, 1, logs.FilterMessage("population created").Len())
}

func TestRunGenerationSingleWorkerIsDeterministic(t *testing.T) {
	run := func() []GenomeSaveData {
		config := testConfig(8)
		config.Neat.Workers = 1
		pop, err := NewPopulation(config, WithRand(rand.New(rand.NewSource(3))))
		require.NoError(t, err)
		require.NoError(t, pop.Run(context.Background(), 10))

		var out []GenomeSaveData
		for _, g := range pop.Genomes {
			out = append(out, g.SaveData())
		}
		return out
	}

	assert.Equal(t, run(), run())
}

func TestRunGenerationCancelled(t *testing.T) {
	pop, err := NewPopulation(testConfig(5))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = pop.RunGeneration(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummary(t *testing.T) {
	config := testConfig(4)
	config.Genome.InitialConnected = false
	pop, err := NewPopulation(config)
	require.NoError(t, err)

	s := pop.Summary()
	assert.Equal(t, 4, s.Genomes)
	assert.Equal(t, 5.0, s.Neurons.Mean)
	assert.Equal(t, 0.0, s.Neurons.Stdev)
	assert.Equal(t, 0.0, s.Connections.Max)
	assert.Equal(t, 0.0, s.EnabledRatio)

	require.True(t, pop.Genomes[0].mutateCreateConnection())
	require.True(t, pop.Genomes[0].mutateCreateNeuron())

	s = pop.Summary()
	assert.Equal(t, 6.0, s.Neurons.Max)
	assert.Equal(t, 5.0, s.Neurons.Median)
	assert.Equal(t, 3.0, s.Connections.Max)
	assert.InDelta(t, 2.0/3.0, s.EnabledRatio, 1e-9)
}

func TestDescribe(t *testing.T) {
	s := Describe([]float64{1, 2, 3, 4})
	assert.Equal(t, 2.5, s.Mean)
	assert.Equal(t, 2.5, s.Median)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.InDelta(t, 1.2909944, s.Stdev, 1e-6)

	assert.Equal(t, Stats{}, Describe(nil))
}
