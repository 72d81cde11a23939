package neat

import (
	"math/rand"

	"go.uber.org/zap"
)

// maxConnectionAttempts bounds the search for an eligible neuron pair in
// mutateCreateConnection.
const maxConnectionAttempts = 100

// Mutation operator names, as reported in logs.
const (
	OpCreateConnection = "create_connection"
	OpCreateNeuron     = "create_neuron"
	OpUpdateWeight     = "update_weight"
	OpSetWeight        = "set_weight"
	OpToggleConnection = "toggle_connection"
)

// Mutate applies the mutation operators in a fixed order: create connection,
// create neuron, update weight, set weight, toggle connection.
//
// By default one uniform value u in [0,1) is drawn and every operator whose
// probability is below u runs. With IndependentDraws each operator draws its
// own value and runs when that value is below its probability.
// It returns the names of the operators that changed the genome.
func (g *Genome) Mutate() []string {
	cfg := g.config
	ops := []struct {
		name  string
		prob  float64
		apply func() bool
	}{
		{OpCreateConnection, cfg.CreateConnectionProb, g.mutateCreateConnection},
		{OpCreateNeuron, cfg.CreateNeuronProb, g.mutateCreateNeuron},
		{OpUpdateWeight, cfg.UpdateWeightProb, g.mutateUpdateWeight},
		{OpSetWeight, cfg.SetWeightProb, g.mutateSetWeight},
		{OpToggleConnection, cfg.ToggleConnectionProb, g.mutateToggleConnection},
	}

	var applied []string
	var value float64
	if !cfg.IndependentDraws {
		value = g.rng.Float64()
	}
	for _, op := range ops {
		triggered := value > op.prob
		if cfg.IndependentDraws {
			triggered = g.rng.Float64() < op.prob
		}
		if triggered && op.apply() {
			applied = append(applied, op.name)
		}
	}

	if len(applied) > 0 {
		g.logger.Debug("genome mutated",
			zap.Strings("operators", applied),
			zap.Int("neurons", g.neurons.Len()),
			zap.Int("connections", g.connections.Len()))
	}
	return applied
}

// mutateCreateConnection links two neurons of different class, always from
// the lower class to the higher one. Pairs of equal class and pairs that are
// already connected are rejected; after maxConnectionAttempts rejected pairs
// the genome is left unchanged.
func (g *Genome) mutateCreateConnection() bool {
	n := g.neurons.Len()
	if n < 2 {
		return false
	}

	for attempt := 0; attempt < maxConnectionAttempts; attempt++ {
		i, j := samplePair(g.rng, n)
		a, _ := g.neurons.GetIndex(i)
		b, _ := g.neurons.GetIndex(j)

		if a.Class() == b.Class() {
			continue
		}
		if a.Class() > b.Class() {
			a, b = b, a
		}

		innovation := g.counter.ConnectionInnovation(a.Innovation(), b.Innovation())
		if g.connections.Contains(innovation) {
			continue
		}
		conn := NewConnectionGene(innovation, a.Innovation(), b.Innovation(), g.config.Weight(g.rng))
		g.connections.InsertOrdered(innovation, conn)
		return true
	}

	g.logger.Debug("no eligible neuron pair for a new connection",
		zap.Int("attempts", maxConnectionAttempts))
	return false
}

// mutateCreateNeuron splits a random connection in two. The connection is
// disabled and replaced by in -> new (weight 1) and new -> out (the old
// weight). The new neuron's class is the midpoint of the two endpoint classes.
func (g *Genome) mutateCreateNeuron() bool {
	n := g.connections.Len()
	if n == 0 {
		return false
	}

	old, _ := g.connections.GetIndexMut(g.rng.Intn(n))
	in, out, weight := old.In(), old.Out(), old.Weight()

	src, ok := g.neurons.Get(in)
	if !ok {
		return false
	}
	dst, ok := g.neurons.Get(out)
	if !ok {
		return false
	}
	if !old.Enabled() {
		g.logger.Debug("splitting a connection that is already disabled",
			zap.Uint32("connection", old.Innovation()))
	}
	old.Disable()

	neuron := NewNeuronGene(g.counter.NeuronInnovation(), Midpoint(src.Class(), dst.Class()))
	id := neuron.Innovation()
	inConn := NewConnectionGene(g.counter.ConnectionInnovation(in, id), in, id, 1.0)
	outConn := NewConnectionGene(g.counter.ConnectionInnovation(id, out), id, out, weight)

	g.neurons.InsertOrdered(id, neuron)
	g.connections.InsertOrdered(inConn.Innovation(), inConn)
	g.connections.InsertOrdered(outConn.Innovation(), outConn)
	return true
}

// mutateUpdateWeight nudges a random weight w to 0.8w + 0.2(w+0.1)u.
func (g *Genome) mutateUpdateWeight() bool {
	conn, ok := g.randomConnection()
	if !ok {
		return false
	}
	w := conn.Weight()
	conn.SetWeight(w*0.8 + 0.2*(w+0.1)*g.rng.Float64())
	return true
}

// mutateSetWeight replaces a random weight with a fresh one from the config.
func (g *Genome) mutateSetWeight() bool {
	conn, ok := g.randomConnection()
	if !ok {
		return false
	}
	conn.SetWeight(g.config.Weight(g.rng))
	return true
}

// mutateToggleConnection flips the enabled flag of a random connection.
func (g *Genome) mutateToggleConnection() bool {
	conn, ok := g.randomConnection()
	if !ok {
		return false
	}
	conn.ToggleEnabled()
	return true
}

func (g *Genome) randomConnection() (*ConnectionGene, bool) {
	n := g.connections.Len()
	if n == 0 {
		return nil, false
	}
	return g.connections.GetIndexMut(g.rng.Intn(n))
}

// samplePair draws two distinct indices in [0, n) uniformly. n must be at
// least 2.
func samplePair(rng *rand.Rand, n int) (int, int) {
	i := rng.Intn(n)
	j := rng.Intn(n - 1)
	if j >= i {
		j++
	}
	return i, j
}
