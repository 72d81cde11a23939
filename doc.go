// Package neat provides the genome side of NeuroEvolution of Augmenting
// Topologies (NEAT): neuron and connection genes, historical markings and the
// mutation operators that grow a network's structure.
//
// The implementation lives in the neat subpackage. Genomes that belong to one
// population share an InnovationCounter, so the same structural change made
// in two genomes receives the same marking.
//
// Basic usage:
//
//	config, err := neat.LoadConfig("configs/default.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	pop, err := neat.NewPopulation(config, neat.WithLogger(logger))
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	if err := pop.Run(ctx, config.Neat.Generations); err != nil {
//		log.Fatalf("Error running population: %v", err)
//	}
//	if err := pop.SaveCheckpoint("run.gz"); err != nil {
//		log.Fatalf("Error saving checkpoint: %v", err)
//	}
//
// Single genomes can be driven directly:
//
//	counter := neat.NewInnovationCounter(cfg.NumNeurons())
//	g := neat.NewGenome(counter, &cfg)
//	applied := g.Mutate()
//
// The neatgenome command under cmd/ wraps these calls.
package neat
