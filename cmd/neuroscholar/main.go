// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the neuroscholar CLI.
// Each reader interaction is a subcommand over one document file; serve
// exposes the same operations over HTTP with per-client sessions.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/neuroscholar/internal/logging"
	"github.com/pdiddy/neuroscholar/internal/secrets"
	"github.com/pdiddy/neuroscholar/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// appConfig and loadedSecrets are populated before any subcommand runs.
var (
	appConfig     types.Config
	loadedSecrets secrets.Set
)

// rootCmd is the base command for the neuroscholar CLI.
var rootCmd = &cobra.Command{
	Use:   "neuroscholar",
	Short: "Research-document assistant: summarize, ask, and test yourself",
	Long: `neuroscholar reads a research document (PDF or plain text) and works
with it through pretrained NLP models: it summarizes the document, answers
questions with a supporting sentence and confidence score, generates
comprehension questions, and grades your answers.

Models are served by remote or local backends (Hugging Face Inference,
Ollama, OpenAI, Gemini, Claude) selected per role in neuroscholar.yaml.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is normal.
		_ = godotenv.Load()

		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		appConfig = cfg
		logging.New(os.Stderr, cfg.Log)

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./neuroscholar.yaml or ~/.config/neuroscholar/neuroscholar.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of API key files")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
