package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/shaperig/internal/cli"
	"github.com/aretw0/shaperig/internal/logging"
)

var splitCmd = &cobra.Command{
	Use:   "split <in.json> <out.json>",
	Short: "Split a definition into left/right sides",
	Long:  `Loads the definition, applies any falloff presets, runs the symmetry split and writes the split definition. Vertex reweighting happens host-side; this command splits names, controllers and graph topology.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		presets, _ := cmd.Flags().GetString("presets")
		debug, _ := cmd.Flags().GetBool("debug")
		if err := runSplit(args[0], args[1], presets, debug); err != nil {
			fmt.Printf("Split failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	splitCmd.Flags().String("presets", "falloffs.yaml", "Falloff presets file (YAML or JSON)")
	rootCmd.AddCommand(splitCmd)
}

func runSplit(inPath, outPath, presetPath string, debug bool) error {
	logger := logging.NewNop()
	if debug {
		logger = logging.New(slog.LevelDebug)
	}
	system, err := cli.LoadSystemFile(inPath, logger)
	if err != nil {
		return err
	}

	presets, err := cli.LoadPresets(presetPath)
	if err != nil {
		return err
	}
	if err := cli.ApplyPresets(system, presets); err != nil {
		return err
	}

	split, err := system.Split(nil)
	if err != nil {
		return err
	}

	if err := cli.WriteSystemFile(outPath, split); err != nil {
		return err
	}
	fmt.Printf("Split %s: %d sliders -> %d, written to %s\n",
		system.Name(), len(system.Sliders()), len(split.Sliders()), outPath)
	return nil
}
