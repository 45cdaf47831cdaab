package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/shaperig/pkg/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate <definition.json>",
	Short: "Check a definition file for consistency",
	Long:  `Parses the definition and verifies every cross reference: progression indices, group indices, falloff links and traversal controls.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(args[0]); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Definition is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if _, err := schema.Parse(data); err != nil {
		issues := schema.ValidationErrors(err)
		if len(issues) == 0 {
			return err
		}
		for _, issue := range issues {
			fmt.Printf("  - %v\n", issue)
		}
		return fmt.Errorf("%d issue(s) found", len(issues))
	}
	return nil
}
