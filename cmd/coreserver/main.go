package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath    string
	gametypesPath string
	bansPath      string
)

func main() {
	root := &cobra.Command{
		Use:   "coreserver",
		Short: "Authoritative tick-based multiplayer server core",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "server.yaml", "path to server.yaml")
	root.PersistentFlags().StringVar(&gametypesPath, "gametypes", "gametypes.toml", "path to gametypes.toml")
	root.PersistentFlags().StringVar(&bansPath, "bans", "bans.db", "path to the ban-list sqlite database")

	root.AddCommand(serveCmd())
	root.AddCommand(remoteCommands()...)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
