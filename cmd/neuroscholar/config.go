package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/neuroscholar/pkg/types"
)

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("neuroscholar")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "neuroscholar"))
		}
	}

	viper.SetEnvPrefix("NEUROSCHOLAR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "path", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so environment overrides apply to
// keys absent from the file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("http.timeout", 60*time.Second)
	v.SetDefault("http.max_retries", 3)

	v.SetDefault("qa.backend", string(types.BackendHF))
	v.SetDefault("qa.model", "")
	v.SetDefault("embedding.backend", string(types.BackendHF))
	v.SetDefault("embedding.model", "")
	v.SetDefault("embedding.cache.enabled", false)
	v.SetDefault("embedding.cache.size", 4096)
	v.SetDefault("embedding.cache.path", "")
	v.SetDefault("generation.backend", string(types.BackendHF))
	v.SetDefault("generation.model", "")
	v.SetDefault("summarization.backend", string(types.BackendHF))
	v.SetDefault("summarization.model", "")
	v.SetDefault("summarization.max_words", 150)

	for _, provider := range []string{"hf", "ollama", "openai", "gemini", "claude"} {
		v.SetDefault(provider+".base_url", "")
		v.SetDefault(provider+".api_key", "")
	}

	v.SetDefault("extraction.pdf_backend", string(types.PDFMarkitdown))
	v.SetDefault("extraction.service_url", "http://localhost:8001")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.session_ttl", 30*time.Minute)
	v.SetDefault("server.max_sessions", 100)
	v.SetDefault("server.max_upload_bytes", 32<<20)
}

// loadConfig decodes v into a Config.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Config prints the configuration after merging defaults, the config
file, and NEUROSCHOLAR_* environment variables. API keys are masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(appConfig.Redacted())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
