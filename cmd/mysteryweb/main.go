package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mysteryweb/internal/config"
)

var (
	configPath  string
	datasetPath string
	debugLog    bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:          "mysteryweb",
		Short:        "Investigation graphs for murder-mystery game content",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Project config file")
	root.PersistentFlags().StringVar(&datasetPath, "dataset", "", "Read entities from this YAML/JSON file instead of the configured source")
	root.PersistentFlags().BoolVar(&debugLog, "debug", false, "Enable debug logging")

	root.AddCommand(buildCmd())
	root.AddCommand(webCmd())
	root.AddCommand(pathCmd())
	root.AddCommand(cyclesCmd())
	root.AddCommand(integrityCmd())
	root.AddCommand(layoutCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(dbCmd())
	root.AddCommand(initCmd())
	root.AddCommand(versionCmd())
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
