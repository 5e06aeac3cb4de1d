package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/configs"
	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/internal/bench"
	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/pkg/logging"
)

// benchCmd measures engine throughput at real-time chunk sizes
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark chunk-processing throughput",
	Long: `Measures ProcessAudioChunk throughput and latency at the chunk sizes
the real-time path uses (256, 512 and 1024 samples by default), feeding
synthesized audio through the realtime ingestion ring.`,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().IntSlice("chunk-sizes", nil, "chunk sizes to measure")
	benchCmd.Flags().Int("chunks", 0, "chunks per run")
	benchCmd.Flags().String("master-call", "", "master call to score against during the run")
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := configs.LoadConfig()
	if err != nil {
		return err
	}

	benchConfig := bench.Config{
		ChunkSizes:     cfg.Bench.ChunkSizes,
		ChunksPerRun:   cfg.Bench.ChunksPerRun,
		SampleRate:     cfg.Engine.SampleRate,
		RingBufferSize: cfg.Realtime.RingBufferSize,
		MasterCall:     cfg.Bench.MasterCall,
		MasterCallsDir: cfg.Engine.MasterCallsDir,
		Timeout:        cfg.Bench.Timeout,
	}

	if sizes, _ := cmd.Flags().GetIntSlice("chunk-sizes"); len(sizes) > 0 {
		benchConfig.ChunkSizes = sizes
	}
	if chunks, _ := cmd.Flags().GetInt("chunks"); chunks > 0 {
		benchConfig.ChunksPerRun = chunks
	}
	if master, _ := cmd.Flags().GetString("master-call"); master != "" {
		benchConfig.MasterCall = master
	}

	logger := logging.NewLogger(effectiveLogLevel())
	runner := bench.NewRunner(benchConfig, logger)

	summary, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}

	printBenchSummary(summary)
	return nil
}

// printBenchSummary prints a human-readable report with locale-aware numbers
func printBenchSummary(summary *bench.Summary) {
	p := message.NewPrinter(language.English)

	fmt.Println("CHUNK PROCESSING BENCHMARK")
	fmt.Println("==========================")

	for _, r := range summary.Results {
		p.Printf("\nChunk size %d samples (%d chunks)\n", r.ChunkSize, r.ChunksProcessed)
		p.Printf("  Throughput:       %.0f chunks/sec\n", r.Throughput)
		p.Printf("  Realtime factor:  %.1fx\n", r.RealtimeFactor)
		p.Printf("  Latency (ms):     mean %.3f  median %.3f  p95 %.3f  p99 %.3f  max %.3f\n",
			r.Latency.Mean, r.Latency.Median, r.Latency.P95, r.Latency.P99, r.Latency.Max)
		if r.FinalScore > 0 {
			p.Printf("  Final score:      %.4f\n", r.FinalScore)
		}
	}

	p.Printf("\nTotal duration: %.1fs\n", summary.TotalDuration.Seconds())
}
