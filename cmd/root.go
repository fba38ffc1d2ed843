package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/avstrong/ratecal/internal/app"
	"github.com/avstrong/ratecal/internal/config"
	"github.com/avstrong/ratecal/internal/logger"
)

var (
	cfgFile string
	envFile string
	v       = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "ratecal",
	Short: "Rate calendar and reservation engine for small hotels",
	Long: `ratecal serves the daily rate calendar of a property: per-date prices and
restrictions, reservations with overlap checks, bulk and quick rate updates,
pricing suggestions and occupancy reports.`,
	SilenceUsage: true,
	RunE:         serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  serve,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the demo property in the configured store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		conf, l, err := setup()
		if err != nil {
			return err
		}
		defer l.Sync() //nolint:errcheck

		seed, err := cmd.Flags().GetInt64("seed")
		if err != nil {
			return fmt.Errorf("read seed flag: %w", err)
		}

		if err := app.Seed(cmd.Context(), l, conf, seed); err != nil {
			l.LogErrorf("Failed to seed: %v", err.Error())

			return err
		}

		l.LogInfo("Demo property is ready")

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file, skipped when missing")
	rootCmd.PersistentFlags().String("port", "", "http port")
	rootCmd.PersistentFlags().String("storage", "", "property store driver: memory or mongo")

	for key, flag := range map[string]string{"app.port": "port", "storage.driver": "storage"} {
		if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}

	seedCmd.Flags().Int64("seed", time.Now().UnixNano(), "random seed for guest names and stays")

	rootCmd.AddCommand(serveCmd, seedCmd)
}

func setup() (*config.Config, *logger.Logger, error) {
	conf, err := config.Load(v, cfgFile, envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	l, err := logger.Build(conf.App.Env)
	if err != nil {
		return nil, nil, err
	}

	return conf, l, nil
}

func serve(_ *cobra.Command, _ []string) error {
	conf, l, err := setup()
	if err != nil {
		return err
	}
	defer l.Sync() //nolint:errcheck

	if err := app.Run(l, conf); err != nil {
		l.LogErrorf("Failed to run app: %v", err.Error())

		return err
	}

	return nil
}

func Execute() error {
	return rootCmd.Execute() //nolint:wrapcheck
}
