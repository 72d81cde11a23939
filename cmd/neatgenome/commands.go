package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/baldhumanity/neat-genome/neat"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	sensors int
	outputs int

	configPath     string
	generations    int
	checkpointPath string
	resume         bool
	metricsAddr    string

	genomeIndex int
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write a configuration file with stock values",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := neat.DefaultConfig(sensors, outputs)
		if len(args) == 0 {
			return neat.WriteConfig(cmd.OutOrStdout(), config)
		}

		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		if err := neat.WriteConfig(f, config); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		logger.Info("config written", zap.String("path", args[0]))
		return nil
	},
}

var evolveCmd = &cobra.Command{
	Use:   "evolve",
	Short: "Run mutation generations over a population",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			return errors.New("--config is required")
		}

		if resume && checkpointPath == "" {
			return errors.New("--resume needs --checkpoint")
		}

		opts := []neat.Option{neat.WithLogger(logger)}
		if metricsAddr != "" {
			reg := prometheus.NewRegistry()
			opts = append(opts, neat.WithMetrics(neat.NewMetrics(reg)))
			stop, err := serveMetrics(metricsAddr, reg)
			if err != nil {
				return err
			}
			defer stop()
		}

		var (
			pop *neat.Population
			err error
		)
		if resume {
			pop, err = neat.LoadCheckpoint(checkpointPath, configPath, opts...)
		} else {
			var config *neat.Config
			config, err = neat.LoadConfig(configPath)
			if err == nil {
				pop, err = neat.NewPopulation(config, opts...)
			}
		}
		if err != nil {
			return err
		}

		n := generations
		if !cmd.Flags().Changed("generations") {
			n = pop.Config.Neat.Generations
		}

		runErr := pop.Run(cmd.Context(), n)
		// an interrupted run is still checkpointed
		if checkpointPath != "" {
			if err := pop.SaveCheckpoint(checkpointPath); err != nil {
				return errors.Join(runErr, err)
			}
		}
		if runErr != nil {
			return runErr
		}

		printSummary(cmd.OutOrStdout(), pop)
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print a checkpoint's summary, or one of its genomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if checkpointPath == "" {
			return errors.New("--checkpoint is required")
		}
		out := cmd.OutOrStdout()

		if configPath == "" {
			data, err := neat.ReadCheckpoint(checkpointPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "run %s, generation %d, %d genomes, next innovation %d\n",
				data.RunID, data.Generation, len(data.Genomes), data.Counter.Next)
			return nil
		}

		pop, err := neat.LoadCheckpoint(checkpointPath, configPath, neat.WithLogger(logger))
		if err != nil {
			return err
		}
		if genomeIndex < 0 {
			printSummary(out, pop)
			return nil
		}
		if genomeIndex >= len(pop.Genomes) {
			return fmt.Errorf("genome %d out of range, checkpoint has %d", genomeIndex, len(pop.Genomes))
		}
		fmt.Fprint(out, pop.Genomes[genomeIndex])
		return nil
	},
}

func init() {
	initConfigCmd.Flags().IntVar(&sensors, "sensors", 2, "number of sensor neurons")
	initConfigCmd.Flags().IntVar(&outputs, "outputs", 1, "number of output neurons")

	evolveCmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (.ini, .yaml or .yml)")
	evolveCmd.Flags().IntVarP(&generations, "generations", "g", 0, "generations to run (default from config)")
	evolveCmd.Flags().StringVar(&checkpointPath, "checkpoint", "", "checkpoint file to write after the run")
	evolveCmd.Flags().BoolVar(&resume, "resume", false, "continue from --checkpoint instead of starting fresh")
	evolveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")

	inspectCmd.Flags().StringVar(&checkpointPath, "checkpoint", "", "checkpoint file to read")
	inspectCmd.Flags().StringVarP(&configPath, "config", "c", "", "config the checkpoint was written with")
	inspectCmd.Flags().IntVar(&genomeIndex, "genome", -1, "print the genes of this genome")
}

func printSummary(w io.Writer, pop *neat.Population) {
	s := pop.Summary()
	fmt.Fprintf(w, "run %s, generation %d\n", pop.RunID, pop.Generation)
	fmt.Fprintf(w, "genomes:      %d\n", s.Genomes)
	fmt.Fprintf(w, "neurons:      mean %.2f, stdev %.2f, min %.0f, max %.0f\n",
		s.Neurons.Mean, s.Neurons.Stdev, s.Neurons.Min, s.Neurons.Max)
	fmt.Fprintf(w, "connections:  mean %.2f, stdev %.2f, min %.0f, max %.0f\n",
		s.Connections.Mean, s.Connections.Stdev, s.Connections.Min, s.Connections.Max)
	fmt.Fprintf(w, "enabled:      %.1f%%\n", 100*s.EnabledRatio)
	fmt.Fprintf(w, "next marking: %d\n", pop.Counter.Next())
}

// serveMetrics exposes reg on addr until the returned func is called.
func serveMetrics(addr string, reg *prometheus.Registry) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
