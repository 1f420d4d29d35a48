package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/deckray/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "deckrayd",
		Short: "Deckray daemon and CLI",
		Long:  "Deckray daemon for running the slide-deck analysis API server and managing the rule corpus",
	}

	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.RulesCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
