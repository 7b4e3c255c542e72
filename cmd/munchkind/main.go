// Package main is the entry point for the munchkin LAN tracker daemon.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "munchkind",
	Short: "Munchkin LAN session tracker",
	Long:  `munchkind shares one live Munchkin session between devices on a local network: one host owns the state, clients mirror it.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(joinCmd)
}
