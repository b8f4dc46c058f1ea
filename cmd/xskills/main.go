// Command xskills installs AI-agent skill bundles from the skill registry
// and maintains the generated registry documents.
package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xskills/xskills/pkg/logger"
	"github.com/xskills/xskills/pkg/presenter"
)

var rootCmd = &cobra.Command{
	Use:   "xskills",
	Short: "Install and manage AI-agent skills",
	Long: `xskills installs skill bundles from the skill registry into
agent-specific skill directories, and keeps the generated registry
documents in sync with the per-skill metadata records.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := logger.SetLogLevel(viper.GetString("log-level")); err != nil {
			return err
		}
		logger.SetLogFormat(viper.GetString("log-format"))
		presenter.SetQuiet(viper.GetBool("quiet"))
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func init() {
	viper.SetEnvPrefix("XSKILLS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.xskills")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig()

	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt, json)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-error output")

	// Flags become viper keys, so XSKILLS_LOG_LEVEL and friends work too.
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		presenter.Error(err, "")
		os.Exit(1)
	}
}
