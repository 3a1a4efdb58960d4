package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set by build script)
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "consent-server",
		Short:         "PSD2 consent management server",
		Version:       fmt.Sprintf("%s (built %s)", version, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", os.Getenv("CONFIG_PATH"),
		"path to deployment.yaml (auto-discovered when empty)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(checksumCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
