package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/configs"
	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/pkg/audio/mfcc"
	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/pkg/audio/wav"
)

// extractedFeatures is the serialized form of a batch extraction
type extractedFeatures struct {
	File         string      `json:"file" yaml:"file"`
	SampleRate   int         `json:"sample_rate" yaml:"sample_rate"`
	Duration     float64     `json:"duration_seconds" yaml:"duration_seconds"`
	FrameSize    int         `json:"frame_size" yaml:"frame_size"`
	HopSize      int         `json:"hop_size" yaml:"hop_size"`
	Coefficients int         `json:"coefficients" yaml:"coefficients"`
	Frames       [][]float64 `json:"frames" yaml:"frames"`
}

// extractCmd runs batch feature extraction over a WAV file
var extractCmd = &cobra.Command{
	Use:   "extract <file.wav>",
	Short: "Extract MFCC features from a WAV file",
	Long: `Runs the batch feature extraction pipeline over an entire recording,
one feature vector per hop, and prints or dumps the result. This is the
same pipeline master-call loading uses.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", "summary", "output format (summary, json, yaml)")
	extractCmd.Flags().String("out-file", "", "write output to file instead of stdout")
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := configs.LoadConfig()
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("output")
	outFile, _ := cmd.Flags().GetString("out-file")

	data, err := wav.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read audio: %w", err)
	}

	processor, err := mfcc.New(mfcc.Config{
		SampleRate:      data.SampleRate,
		FrameSize:       cfg.Engine.FrameSize,
		NumCoefficients: cfg.Engine.MFCCCoefficients,
		NumFilters:      cfg.Engine.MelFilters,
	})
	if err != nil {
		return fmt.Errorf("failed to create processor: %w", err)
	}

	frames, err := processor.ProcessBuffer(data.Samples, cfg.Engine.HopSize)
	if err != nil {
		return fmt.Errorf("feature extraction failed: %w", err)
	}

	result := &extractedFeatures{
		File:         path,
		SampleRate:   data.SampleRate,
		Duration:     data.Duration(),
		FrameSize:    cfg.Engine.FrameSize,
		HopSize:      cfg.Engine.HopSize,
		Coefficients: cfg.Engine.MFCCCoefficients,
		Frames:       frames,
	}

	var out []byte
	switch format {
	case "json":
		out, err = json.MarshalIndent(result, "", "  ")
	case "yaml":
		out, err = yaml.Marshal(result)
	case "summary":
		fmt.Printf("File:          %s\n", path)
		fmt.Printf("Sample rate:   %d Hz\n", data.SampleRate)
		fmt.Printf("Duration:      %.2fs\n", data.Duration())
		fmt.Printf("Frames:        %d\n", len(frames))
		fmt.Printf("Coefficients:  %d per frame\n", cfg.Engine.MFCCCoefficients)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	if outFile != "" {
		return os.WriteFile(outFile, out, 0644)
	}
	_, err = os.Stdout.Write(out)
	return err
}
