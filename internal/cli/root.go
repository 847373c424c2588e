package cli

import (
	"fmt"
	"os"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/ppiankov/veritube/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "veritube",
	Short: "Veritube - evidence-grounded YouTube video evaluation",
	Long: `Veritube evaluates a YouTube video for factual accuracy, bias, and
logical consistency.

It fetches the video's transcript, distills it into fact-checkable search
queries, retrieves corroborating sources from the web, and asks a generative
model to judge the video's claims against that evidence. Sentiment is
classified independently. The result is a single structured report.

Verdicts describe how well claims are supported by retrieved sources; the
tool does not decide what is true.`,
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
		fmt.Println("veritube v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.veritube/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
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

		viper.AddConfigPath(home + "/.veritube")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match VERITUBE_*
	// (VERITUBE_PIPELINE_MAX_QUERIES overrides pipeline.max_queries)
	viper.SetEnvPrefix("VERITUBE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindDefaults()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// bindDefaults registers the full default tree with viper so the file and
// environment layers merge against known keys
func bindDefaults() {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return
	}
	var defaults map[string]any
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return
	}
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
}

// loadConfig overlays the viper-merged layers (config file, VERITUBE_*
// environment, registered defaults) onto the built-in configuration
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) { dc.TagName = "yaml" }); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}
