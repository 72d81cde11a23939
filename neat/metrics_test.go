package neat

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopulationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	config := testConfig(5)
	// with every probability at 0 the single draw triggers all operators
	config.Genome.CreateConnectionProb = 0
	config.Genome.CreateNeuronProb = 0
	config.Genome.SetWeightProb = 0
	config.Genome.UpdateWeightProb = 0
	config.Genome.ToggleConnectionProb = 0

	pop, err := NewPopulation(config, WithMetrics(m))
	require.NoError(t, err)
	require.NoError(t, pop.Run(context.Background(), 3))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.generations))
	assert.Equal(t, float64(pop.Counter.Next()), testutil.ToFloat64(m.nextInnovation))
	assert.Equal(t, pop.Summary().Neurons.Mean, testutil.ToFloat64(m.meanNeurons))
	// a split always succeeds on a connected genome
	assert.Equal(t, 15.0, testutil.ToFloat64(m.mutations.WithLabelValues(OpCreateNeuron)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.generationDuration))
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	m.observeMutations([]string{OpSetWeight})
	m.observeGeneration(nil, Summary{}, 0)
}
