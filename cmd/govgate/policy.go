package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"govgate/internal/policy"
)

func newPolicyCmd() *cobra.Command {
	policyCmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect policy documents",
	}

	validateCmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a policy YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			doc, err := policy.Load(path)
			if err != nil {
				color.Red("✗ %s: %v", path, err)
				return err
			}

			color.Green("✓ %s is valid", path)
			fmt.Printf("  version: %s\n", doc.Version)
			fmt.Printf("  modes: %d", len(doc.Modes))
			if fallback := doc.FallbackMode(); fallback != nil {
				fmt.Printf(" (fallback: %s)", fallback.ID)
			}
			fmt.Println()
			fmt.Printf("  escalation rules: %d\n", len(doc.EscalationRules))
			fmt.Printf("  routing rules: %d\n", len(doc.Routing.Rules))
			return nil
		},
	}

	policyCmd.AddCommand(validateCmd)
	return policyCmd
}
