package neat

import (
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// CheckpointVersion is bumped whenever PopulationSaveData changes shape.
const CheckpointVersion = 1

// ErrCheckpointVersion is returned when a checkpoint was written by an
// incompatible version.
var ErrCheckpointVersion = errors.New("unsupported checkpoint version")

// NeuronRecord is the saved form of a NeuronGene.
type NeuronRecord struct {
	Innovation uint32
	Class      NeuronClass
}

// ConnectionRecord is the saved form of a ConnectionGene.
type ConnectionRecord struct {
	Innovation uint32
	In         uint32
	Out        uint32
	Weight     float64
	Enabled    bool
}

// GenomeSaveData holds a genome's genes in ascending innovation order.
type GenomeSaveData struct {
	Neurons     []NeuronRecord
	Connections []ConnectionRecord
}

// PopulationSaveData is everything needed to resume a run. The Config is not
// saved; it is reloaded from the config file.
type PopulationSaveData struct {
	Version    int
	RunID      string
	Generation int
	Counter    CounterState
	Genomes    []GenomeSaveData
}

// SaveData returns the saved form of g.
func (g *Genome) SaveData() GenomeSaveData {
	data := GenomeSaveData{
		Neurons:     make([]NeuronRecord, 0, g.neurons.Len()),
		Connections: make([]ConnectionRecord, 0, g.connections.Len()),
	}
	for _, n := range g.neurons.All() {
		data.Neurons = append(data.Neurons, NeuronRecord{Innovation: n.Innovation(), Class: n.Class()})
	}
	for _, c := range g.connections.All() {
		data.Connections = append(data.Connections, ConnectionRecord{
			Innovation: c.Innovation(),
			In:         c.In(),
			Out:        c.Out(),
			Weight:     c.Weight(),
			Enabled:    c.Enabled(),
		})
	}
	return data
}

// RestoreGenome rebuilds a genome from its saved form. Genes are inserted in
// order, so records need not be sorted.
func RestoreGenome(data GenomeSaveData, counter *InnovationCounter, config *GenomeConfig, opts ...Option) *Genome {
	g := newEmptyGenome(counter, config, opts)
	for _, n := range data.Neurons {
		g.neurons.InsertOrdered(n.Innovation, NewNeuronGene(n.Innovation, n.Class))
	}
	for _, c := range data.Connections {
		conn := NewConnectionGene(c.Innovation, c.In, c.Out, c.Weight)
		if !c.Enabled {
			conn.Disable()
		}
		g.connections.InsertOrdered(c.Innovation, conn)
	}
	return g
}

// SaveCheckpoint saves the current state of the Population to a gzip
// compressed gob file.
func (p *Population) SaveCheckpoint(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	saveData := PopulationSaveData{
		Version:    CheckpointVersion,
		RunID:      p.RunID,
		Generation: p.Generation,
		Counter:    p.Counter.State(),
		Genomes:    make([]GenomeSaveData, len(p.Genomes)),
	}
	for i, g := range p.Genomes {
		saveData.Genomes[i] = g.SaveData()
	}

	gzWriter := gzip.NewWriter(file)
	if err := gob.NewEncoder(gzWriter).Encode(saveData); err != nil {
		_ = gzWriter.Close()
		return fmt.Errorf("failed to encode population data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint '%s': %w", filePath, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close checkpoint '%s': %w", filePath, err)
	}

	p.logger.Info("checkpoint saved",
		zap.String("path", filePath),
		zap.String("run_id", p.RunID),
		zap.Int("generation", p.Generation))
	return nil
}

// LoadCheckpoint loads a Population from a checkpoint file. The configuration
// is reloaded from configPath.
func LoadCheckpoint(checkpointPath, configPath string, opts ...Option) (*Population, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config '%s' for checkpoint: %w", configPath, err)
	}

	saveData, err := ReadCheckpoint(checkpointPath)
	if err != nil {
		return nil, err
	}
	if saveData.Counter.Next < config.Genome.NumNeurons() {
		return nil, fmt.Errorf("checkpoint '%s' does not match config: innovation counter %d is below %d initial neurons",
			checkpointPath, saveData.Counter.Next, config.Genome.NumNeurons())
	}

	p := newPopulationShell(config, saveData.RunID, opts)
	p.Generation = saveData.Generation
	p.Counter = RestoreInnovationCounter(saveData.Counter)
	p.Genomes = make([]*Genome, len(saveData.Genomes))
	for i, data := range saveData.Genomes {
		p.Genomes[i] = RestoreGenome(data, p.Counter, &config.Genome, p.genomeOptions(i)...)
	}

	p.logger.Info("checkpoint loaded",
		zap.String("path", checkpointPath),
		zap.String("run_id", p.RunID),
		zap.Int("generation", p.Generation),
		zap.Int("genomes", len(p.Genomes)))
	return p, nil
}

// ReadCheckpoint decodes a checkpoint file without rebuilding the population.
func ReadCheckpoint(checkpointPath string) (*PopulationSaveData, error) {
	file, err := os.Open(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", checkpointPath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	saveData := &PopulationSaveData{}
	if err := gob.NewDecoder(gzReader).Decode(saveData); err != nil {
		return nil, fmt.Errorf("failed to decode population data from checkpoint: %w", err)
	}
	if saveData.Version != CheckpointVersion {
		return nil, fmt.Errorf("checkpoint '%s' has version %d: %w", checkpointPath, saveData.Version, ErrCheckpointVersion)
	}
	return saveData, nil
}
