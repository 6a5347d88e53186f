package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Portal — Comunidade de Esports",
	Long:  "Portal is the backend for a regional esports community: team and streamer registrations go through an admin moderation queue, with notifications, an audit trail, player matchmaking profiles, and published matches, tournaments, and news.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: configs/portal.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
