package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "govgate",
		Short: "Governance gateway in front of LLM calls",
		Long: `govgate classifies every inbound request, decides an operating mode and
target model under a versioned policy, assembles retrieval context from the
tenant knowledge base, and forwards a decorated prompt upstream.`,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newPolicyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
