package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/config"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/logging"
)

var Version = "dev"

var (
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger

	// stdout is swapped in tests
	stdout io.Writer = os.Stdout
)

var rootCmd = &cobra.Command{
	Use:   "indoor-jungle",
	Short: "Indoor Jungle plant care tracker",
	Long: `Indoor Jungle tracks houseplants and their care: watering, feeding,
repotting, soil top-ups and pruning, with reminders for what is due.

Run without a subcommand to start the HTTP API server.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// hash-password works without a config file or database
		if cmd.Name() == hashPasswordCmd.Name() {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file (missing file means defaults)")

	rootCmd.AddCommand(serveCmd, migrateCmd, exportCmd, importCmd, dueCmd, hashPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
