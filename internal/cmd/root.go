package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	configcmd "github.com/Iron-Ham/recents/internal/cmd/config"
	"github.com/Iron-Ham/recents/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "recents",
	Short: "Recent tasks panel",
	Long: `Recents shows the recently used tasks of a host as a list of cards.

Tasks are read from a YAML registry file. Cards are ordered, filtered and
revealed one by one while their icons and thumbnails load in the
background.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/recents/config.yaml)")
	rootCmd.PersistentFlags().String("registry", "", "task registry file (default is tasks.yaml next to the config file)")
	bindFlags()

	configcmd.Register(rootCmd)
}

func bindFlags() {
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("registry.path", rootCmd.PersistentFlags().Lookup("registry"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix(config.EnvPrefix)
	// RECENTS_PANEL_MAX_TASKS for panel.max_tasks
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
