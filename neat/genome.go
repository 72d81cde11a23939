package neat

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"github.com/baldhumanity/neat-genome/neat/hashvec"
)

// ErrNotSupported is returned by genome operations that are named but have no
// defined algorithm yet.
var ErrNotSupported = errors.New("not supported")

// Genome is the evolvable encoding of one network: its neuron genes and
// connection genes, each kept in ascending innovation order.
//
// A Genome is mutated by one owner at a time. The InnovationCounter it was
// created with is shared with the rest of the population.
type Genome struct {
	counter     *InnovationCounter
	config      *GenomeConfig
	neurons     *hashvec.HashVec[uint32, NeuronGene]
	connections *hashvec.HashVec[uint32, ConnectionGene]
	rng         *rand.Rand
	logger      *zap.Logger
}

type options struct {
	rng     *rand.Rand
	logger  *zap.Logger
	metrics *Metrics
}

// Option customises genomes and populations.
type Option func(*options)

// WithRand sets the random source. Genomes need their own source: *rand.Rand
// is not safe for concurrent use.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

func newEmptyGenome(counter *InnovationCounter, config *GenomeConfig, opts []Option) *Genome {
	o := buildOptions(opts)
	return &Genome{
		counter:     counter,
		config:      config,
		neurons:     hashvec.New[uint32](compareGenes[NeuronGene]),
		connections: hashvec.New[uint32](compareGenes[ConnectionGene]),
		rng:         o.rng,
		logger:      o.logger,
	}
}

// NewGenome creates a genome with config.NumSensors sensor neurons (markings
// 0..NumSensors-1) followed by config.NumOutputs output neurons. When
// config.InitialConnected is set every sensor is wired to every output, with
// markings requested from counter.
//
// counter should have been created with config.NumNeurons() so the neuron
// markings used here are never issued again. Negative counts are read as
// zero.
func NewGenome(counter *InnovationCounter, config *GenomeConfig, opts ...Option) *Genome {
	g := newEmptyGenome(counter, config, opts)

	numSensors, numOutputs := config.neuronCounts()
	numNeurons := numSensors + numOutputs

	for i := uint32(0); i < numSensors; i++ {
		g.neurons.InsertOrdered(i, NewNeuronGene(i, SensorClass))
	}
	for i := numSensors; i < numNeurons; i++ {
		g.neurons.InsertOrdered(i, NewNeuronGene(i, OutputClass))
	}

	if config.InitialConnected {
		for i := uint32(0); i < numSensors; i++ {
			for k := numSensors; k < numNeurons; k++ {
				innovation := counter.ConnectionInnovation(i, k)
				conn := NewConnectionGene(innovation, i, k, config.Weight(g.rng))
				g.connections.InsertOrdered(innovation, conn)
			}
		}
	}

	return g
}

// Clone returns a deep copy of g sharing its counter and config.
func (g *Genome) Clone(opts ...Option) *Genome {
	if len(opts) == 0 {
		opts = []Option{WithLogger(g.logger), WithRand(rand.New(rand.NewSource(g.rng.Int63())))}
	}
	c := newEmptyGenome(g.counter, g.config, opts)
	for _, n := range g.neurons.All() {
		c.neurons.Insert(n.Innovation(), n)
	}
	for _, conn := range g.connections.All() {
		c.connections.Insert(conn.Innovation(), conn)
	}
	return c
}

// Config returns the genome's configuration.
func (g *Genome) Config() *GenomeConfig { return g.config }

// Counter returns the innovation counter shared by the genome's population.
func (g *Genome) Counter() *InnovationCounter { return g.counter }

// NumNeurons returns the number of neuron genes.
func (g *Genome) NumNeurons() int { return g.neurons.Len() }

// NumConnections returns the number of connection genes, enabled or not.
func (g *Genome) NumConnections() int { return g.connections.Len() }

// Neuron looks up a neuron gene by marking.
func (g *Genome) Neuron(innovation uint32) (NeuronGene, bool) {
	return g.neurons.Get(innovation)
}

// Connection looks up a connection gene by marking.
func (g *Genome) Connection(innovation uint32) (ConnectionGene, bool) {
	return g.connections.Get(innovation)
}

// Neurons returns a copy of the neuron genes in ascending innovation order.
func (g *Genome) Neurons() []NeuronGene {
	return g.neurons.Items()
}

// Connections returns a copy of the connection genes in ascending innovation
// order.
func (g *Genome) Connections() []ConnectionGene {
	return g.connections.Items()
}

// Crossover is reserved for combining two parent genomes. No alignment
// algorithm is defined yet, so it always fails with ErrNotSupported.
func Crossover(parent1, parent2 *Genome) (*Genome, error) {
	return nil, fmt.Errorf("crossover: %w", ErrNotSupported)
}

// Distance is reserved for the genetic distance between two genomes. It
// always fails with ErrNotSupported.
func (g *Genome) Distance(other *Genome) (float64, error) {
	return 0, fmt.Errorf("genetic distance: %w", ErrNotSupported)
}

// String returns a multi-line listing of the genome's genes.
func (g *Genome) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Genome(Neurons: %d, Connections: %d)\n", g.neurons.Len(), g.connections.Len())
	for _, n := range g.neurons.All() {
		fmt.Fprintf(&sb, "  %s\n", n)
	}
	for _, c := range g.connections.All() {
		fmt.Fprintf(&sb, "  %s\n", c)
	}
	return sb.String()
}
