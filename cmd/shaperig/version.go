package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/shaperig"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of shaperig",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("shaperig version %s\n", strings.TrimSpace(shaperig.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
