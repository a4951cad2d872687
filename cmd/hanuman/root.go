package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayusman/hanuman/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "hanuman",
	Short: "Hand-gesture particle morph engine",
	Long: `Hanuman turns a webcam hand into a 3D particle cloud that morphs
through Mother Earth, Sacred Heart, Sacred Gada, Hanuman and the Divine Aura.
Pinch to advance the shape, open and close the hand to zoom, move the wrist
to steer.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.hanuman/config.toml)")
}

// resolveConfigPath returns --config, or the default path.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
