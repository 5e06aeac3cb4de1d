package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/configs"
	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/internal/engine"
	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/pkg/audio/wav"
	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/pkg/logging"
)

// compareCmd scores a recording against a stored master call
var compareCmd = &cobra.Command{
	Use:   "compare <master-call-name> <recording.wav>",
	Short: "Score a recording against a master call",
	Long: `Loads the named master call, streams the recording through a session
chunk by chunk, and prints the final similarity score.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().String("master-calls-dir", "", "directory holding master call WAV files")
	compareCmd.Flags().Bool("per-chunk", false, "print the score after every active chunk")
}

func runCompare(cmd *cobra.Command, args []string) error {
	masterName, recordingPath := args[0], args[1]

	cfg, err := configs.LoadConfig()
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("master-calls-dir"); dir != "" {
		cfg.Engine.MasterCallsDir = dir
	}
	perChunk, _ := cmd.Flags().GetBool("per-chunk")

	logger := logging.NewLogger(effectiveLogLevel())

	recording, err := wav.ReadFile(recordingPath)
	if err != nil {
		return fmt.Errorf("failed to read recording: %w", err)
	}

	eng, err := engine.New(engine.Config{
		SampleRate:         recording.SampleRate,
		FrameSize:          cfg.Engine.FrameSize,
		HopSize:            cfg.Engine.HopSize,
		MFCCCoefficients:   cfg.Engine.MFCCCoefficients,
		MelFilters:         cfg.Engine.MelFilters,
		VADEnergyThreshold: cfg.Engine.VADEnergyThreshold,
		VADWindowDuration:  cfg.Engine.VADWindowDuration,
		BufferPoolSize:     cfg.Engine.BufferPoolSize,
		MasterCallsDir:     cfg.Engine.MasterCallsDir,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer eng.Close()

	if err := eng.LoadMasterCall(masterName); err != nil {
		return err
	}

	id, err := eng.CreateSession(float32(recording.SampleRate))
	if err != nil {
		return err
	}

	frameSize := cfg.Engine.FrameSize
	finalScore := 0.0
	activeChunks := 0
	totalChunks := 0

	for offset := 0; offset+frameSize <= len(recording.Samples); offset += frameSize {
		result, err := eng.ProcessAudioChunk(id, recording.Samples[offset:offset+frameSize])
		if err != nil {
			return err
		}
		totalChunks++

		if result.FramesProcessed > 0 {
			activeChunks++
			finalScore = result.Score
			if perChunk {
				fmt.Printf("chunk %4d  score %.4f\n", totalChunks, result.Score)
			}
		}
	}

	if activeChunks == 0 {
		return fmt.Errorf("no voice activity detected in %s", recordingPath)
	}

	fmt.Printf("Master call:    %s\n", masterName)
	fmt.Printf("Recording:      %s (%.2fs)\n", recordingPath, recording.Duration())
	fmt.Printf("Active chunks:  %d of %d\n", activeChunks, totalChunks)
	fmt.Printf("Similarity:     %.4f\n", finalScore)

	return nil
}
