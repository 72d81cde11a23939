package neat

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Population holds a set of genomes that share one InnovationCounter.
type Population struct {
	Config     *Config
	Counter    *InnovationCounter
	Genomes    []*Genome
	Generation int
	RunID      string

	rng     *rand.Rand
	logger  *zap.Logger
	metrics *Metrics
}

// NewPopulation creates Config.Neat.PopSize genomes and the counter they
// share. Unless WithRand is given, the population's random source is seeded
// from Config.Neat.Seed (or the clock when the seed is 0). Every genome gets
// its own source derived from it.
func NewPopulation(config *Config, opts ...Option) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := newPopulationShell(config, uuid.NewString(), opts)
	p.Counter = NewInnovationCounter(config.Genome.NumNeurons())
	p.Genomes = make([]*Genome, config.Neat.PopSize)
	for i := range p.Genomes {
		p.Genomes[i] = NewGenome(p.Counter, &config.Genome, p.genomeOptions(i)...)
	}

	p.logger.Info("population created",
		zap.String("run_id", p.RunID),
		zap.Int("genomes", len(p.Genomes)),
		zap.Int("sensors", config.Genome.NumSensors),
		zap.Int("outputs", config.Genome.NumOutputs),
		zap.Bool("initial_connected", config.Genome.InitialConnected))
	return p, nil
}

func newPopulationShell(config *Config, runID string, opts []Option) *Population {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		seed := config.Neat.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		o.rng = rand.New(rand.NewSource(seed))
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return &Population{
		Config:  config,
		RunID:   runID,
		rng:     o.rng,
		logger:  o.logger,
		metrics: o.metrics,
	}
}

func (p *Population) genomeOptions(index int) []Option {
	return []Option{
		WithRand(rand.New(rand.NewSource(p.rng.Int63()))),
		WithLogger(p.logger.With(zap.Int("genome", index))),
	}
}

func (p *Population) workers() int {
	if p.Config.Neat.Workers > 0 {
		return p.Config.Neat.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// RunGeneration mutates every genome once. Genomes are mutated concurrently
// by up to Config.Neat.Workers goroutines; with more than one worker the
// order in which markings are issued is not deterministic.
func (p *Population) RunGeneration(ctx context.Context) error {
	p.Generation++
	start := time.Now()

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.workers())

	var mutated atomic.Int64
	for _, g := range p.Genomes {
		if gctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			applied := g.Mutate()
			if len(applied) > 0 {
				mutated.Add(1)
			}
			p.metrics.observeMutations(applied)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("generation %d: %w", p.Generation, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("generation %d: %w", p.Generation, err)
	}

	s := p.Summary()
	p.metrics.observeGeneration(p, s, time.Since(start))
	p.logger.Info("generation finished",
		zap.String("run_id", p.RunID),
		zap.Int("generation", p.Generation),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int64("mutated", mutated.Load()),
		zap.Float64("mean_neurons", s.Neurons.Mean),
		zap.Float64("mean_connections", s.Connections.Mean),
		zap.Float64("enabled_ratio", s.EnabledRatio),
		zap.Uint32("next_innovation", p.Counter.Next()))
	return nil
}

// Run executes n generations, stopping early if ctx is cancelled.
func (p *Population) Run(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := p.RunGeneration(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Summary describes the size of the genomes in a population.
type Summary struct {
	Genomes      int
	Neurons      Stats
	Connections  Stats
	EnabledRatio float64 // enabled connections over all connections
}

// Summary computes size statistics over the current genomes.
func (p *Population) Summary() Summary {
	neurons := make([]float64, 0, len(p.Genomes))
	connections := make([]float64, 0, len(p.Genomes))
	enabled := 0.0
	for _, g := range p.Genomes {
		neurons = append(neurons, float64(g.NumNeurons()))
		connections = append(connections, float64(g.NumConnections()))
		for _, c := range g.connections.All() {
			if c.Enabled() {
				enabled++
			}
		}
	}

	s := Summary{
		Genomes:     len(p.Genomes),
		Neurons:     Describe(neurons),
		Connections: Describe(connections),
	}
	if total := Sum(connections); total > 0 {
		s.EnabledRatio = enabled / total
	}
	return s
}
