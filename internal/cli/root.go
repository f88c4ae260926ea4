package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazypower/seastate/internal/config"
	"github.com/lazypower/seastate/internal/store"
)

var (
	configPath string
	serverURL  string
)

var rootCmd = &cobra.Command{
	Use:   "seastate",
	Short: "Behavioral drift meter for video watching",
	Long: "Seastate turns watch history and navigation signals into a decaying drift score " +
		"and reports it as a sea state: Calm, Choppy, Rough or Storm.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $SEASTATE_CONFIG or ~/.seastate/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "url", "", "Server URL (default $SEASTATE_URL or http://127.0.0.1:37778)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(navigateCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(mcpCmd)
}

// loadConfig resolves the config path and loads it.
func loadConfig() (string, config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.Path(); err != nil {
			return "", config.Config{}, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return path, cfg, fmt.Errorf("load config: %w", err)
	}
	return path, cfg, nil
}

// openDB opens the database named by the config, or the default one.
func openDB(cfg config.Config) (*store.DB, string, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, "", fmt.Errorf("resolve db path: %w", err)
		}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, dbPath, fmt.Errorf("open database: %w", err)
	}
	return db, dbPath, nil
}
