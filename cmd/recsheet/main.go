// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the recsheet CLI. recsheet converts
// Markdown recording-sheet tables into CSV for spreadsheet import and can
// draft those tables from PDF recording sheets.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/recsheet/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from the secrets directory at startup.
var loadedSecrets secrets.Store

// rootCmd is the base command for the recsheet CLI.
var rootCmd = &cobra.Command{
	Use:   "recsheet",
	Short: "Convert Markdown recording sheets to CSV",
	Long: `recsheet converts a Markdown pipe table describing a recording sheet into
CSV files in several encodings, keeping the columns a karaoke catalogue import
needs (№, 曲名, 歌手名, DK№, OrgTime and the remarks column).

Tables can be written by hand or drafted from PDF recording sheets with the
draft subcommand.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(viper.GetString("secrets_dir"), os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if names := s.Names(); len(names) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", names)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./recsheet.yaml or ~/.config/recsheet/recsheet.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory holding API key files")
	_ = viper.BindPFlag("secrets_dir", rootCmd.PersistentFlags().Lookup("secrets-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("recsheet")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "recsheet"))
		}
	}

	// RECSHEET_CONVERT_OUT_DIR overrides convert.out_dir.
	viper.SetEnvPrefix("RECSHEET")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
