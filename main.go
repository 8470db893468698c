// Command petmatch runs the pet adoption matching backend.
package main

import (
	"fmt"
	"os"

	"gitea.kood.tech/petrkubec/pet-match/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const app = "petmatch"

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	cfgFile string
	debug   bool
	json    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           app,
		Short:         "Pet adoption matching backend",
		Long:          "petmatch scores adopter/pet personality compatibility and serves the like/match API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "YAML config file (env vars are always read)")
	cmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "verbose/debug output")
	cmd.PersistentFlags().BoolVarP(&opts.json, "json", "j", false, "json format for logging")

	cmd.AddCommand(
		newServeCmd(opts),
		newScoreCmd(),
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// setup loads the config and builds the logger; flags override config.
func (o *rootOptions) setup() (*Config, *zap.Logger, error) {
	cfg, err := loadConfig(o.cfgFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(logger.Options{
		JSON:    o.json || cfg.LogJSON,
		Debug:   o.debug || cfg.LogDebug,
		Output:  cfg.LogOutput,
		Version: version,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}
	return cfg, log, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
