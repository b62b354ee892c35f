package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rendis/subregiones/internal/config"
	"github.com/rendis/subregiones/internal/engine/arcgis"
	"github.com/rendis/subregiones/internal/engine/features"
	"github.com/rendis/subregiones/internal/tui"
)

var cfg *config.Config

// newLoader builds the upstream client. Tests swap it for a stub.
var newLoader = func(c *config.Config) features.Loader {
	return arcgis.NewClient(arcgis.Options{
		Timeout:   c.Fetch.Timeout,
		ProxyURL:  c.Fetch.ProxyURL,
		ChromeTLS: c.Fetch.ChromeTLS,
	}, zap.L())
}

var rootCmd = &cobra.Command{
	Use:   "subregiones",
	Short: "Colombian subregions map with department and subregion filters",
	Long: "Fetches the subregion polygons of Colombia once and draws the ones matching\n" +
		"the selected department code and subregion name. Without a subcommand it\n" +
		"opens the terminal viewer.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		// The terminal viewer owns stdout, so its logs go to a file.
		toFile := cmd == cmd.Root()
		if err := config.InitLogger(cfg.Log, toFile); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return tui.Run(ctx, newLoader(cfg), zap.L())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
