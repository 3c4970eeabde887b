package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/marincop/internal/model"
)

// Version is set at build time
var Version = "v0.1.0"

var (
	cfgFile         string
	verbose         bool
	storeDriver     string
	storePath       string
	metricsTextfile string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "marincop",
	Short: "Marincop - marine claim notification intake",
	Long: `Marincop turns a free-text first notification of a marine incident into
a structured claim record.

It extracts vessel, date, location and incident facts, suggests the
insurance covers that may respond, plans the first actions and keeps
the claim's finance, progress and reminders in one store.

Suggestions are advisory. A claims handler confirms every cover.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("marincop %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.marincop/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store", "", "claim store driver (json, sqlite, postgres, memory)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store-path", "", "claim store file (json, sqlite) or DSN (postgres)")
	rootCmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "", "write prometheus metrics to this file on exit")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.marincop")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Defaults must be registered for MARINCOP_* variables to reach Unmarshal
	if err := registerDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	// MARINCOP_STORE_DRIVER overrides store.driver
	viper.SetEnvPrefix("MARINCOP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults, config file, environment and global flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if storeDriver != "" {
		cfg.Store.Driver = storeDriver
	}
	if storePath != "" {
		if cfg.Store.Driver == "postgres" {
			cfg.Store.DSN = storePath
		} else {
			cfg.Store.Path = storePath
		}
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")

	return cfg, nil
}

// registerDefaults flattens cfg into dotted viper defaults
func registerDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	for key, value := range flatten("", tree) {
		v.SetDefault(key, value)
	}
	return nil
}

func flatten(prefix string, tree map[string]any) map[string]any {
	out := make(map[string]any)
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			for sk, sv := range flatten(key, sub) {
				out[sk] = sv
			}
			continue
		}
		out[key] = v
	}
	return out
}
