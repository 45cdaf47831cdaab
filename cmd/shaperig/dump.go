package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/shaperig/internal/cli"
	"github.com/aretw0/shaperig/internal/logging"
	"github.com/aretw0/shaperig/pkg/domain"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <definition.json>",
	Short: "Print a readable summary of a definition file",
	Long:  `Loads the definition and prints the system's shapes, falloffs and controllers in solve order, colorized by controller kind.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		if err := runDump(args[0], debug); err != nil {
			fmt.Printf("Dump failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}

func runDump(path string, debug bool) error {
	logger := logging.NewNop()
	if debug {
		logger = logging.New(slog.LevelDebug)
	}
	system, err := cli.LoadSystemFile(path, logger)
	if err != nil {
		return err
	}

	p := termenv.ColorProfile()
	header := termenv.String(system.Name()).Bold().Foreground(p.Color("#818cf8"))
	fmt.Printf("%s  (%d shapes, %d falloffs, %d groups)\n\n",
		header, len(system.Shapes()), len(system.Falloffs()), len(system.Groups()))

	kindColors := map[domain.ControllerKind]string{
		domain.KindSlider:    "#34d399",
		domain.KindCombo:     "#fbbf24",
		domain.KindTraversal: "#f472b6",
	}
	for _, ctrl := range system.ControllersByDepth() {
		kind := termenv.String(ctrl.Kind().String()).Foreground(p.Color(kindColors[ctrl.Kind()]))
		fmt.Printf("  %-10s %s", kind, ctrl.Name())
		if !ctrl.Enabled() {
			fmt.Print("  (disabled)")
		}
		fmt.Println()
		for _, pair := range ctrl.Progression().Pairs() {
			fmt.Printf("             %6.2f  %s\n", pair.Value, pair.Shape.Name())
		}
	}
	return nil
}
