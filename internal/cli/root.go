package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is the release string printed by the version command
const Version = "0.1.0"

var (
	cfgFile      string
	verbose      bool
	jsonOut      bool
	sourceFlag   string
	colorFlag    string
	timeout      time.Duration
	configLoaded bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "manifesto",
	Short: "Manifesto - cross-model consensus on bans in party manifestos",
	Long: `Manifesto reads the analysis artifacts produced for German party
manifestos and shows where several language models agree.

Each model marks passages that propose explicit or implied bans. Manifesto
clusters overlapping passages, scores them by how many models found them,
and lets you drill into parties, years, models and topic classifications.

It does not judge the manifestos. It shows what the models reported.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command. An interrupt cancels artifact loading.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Manifesto.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "manifesto v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.manifesto/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&jsonOut, "json", false, "write JSON instead of tables")
	flags.StringVar(&sourceFlag, "source", "", "artifact location: directory or http(s) base URL")
	flags.StringVar(&colorFlag, "color", "", "color output: auto, always, never")
	flags.DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout for loading artifacts")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("output.json", flags.Lookup("json"))
	_ = viper.BindPFlag("output.color", flags.Lookup("color"))
	_ = viper.BindPFlag("source.location", flags.Lookup("source"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.manifesto")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match MANIFESTO_*, e.g.
	// MANIFESTO_SOURCE_LOCATION for source.location
	viper.SetEnvPrefix("MANIFESTO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	configLoaded = err == nil
	if configLoaded && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
	if err != nil && cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", cfgFile, err)
	}
}
