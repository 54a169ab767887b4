// internal/cli/show_config.go
package winnow

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/winnow/internal/appconfig"
)

// showConfigCmd implements 'show config', printing the settings the
// other commands would run with after config file and flag overrides.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON configs are loaded properly and overridden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		fallback := appconfig.Config{
			Samples: viper.GetInt("samples"),
			Seed:    viper.GetInt64("seed"),
			Source:  viper.GetString("source"),
			Output:  viper.GetString("output"),
			Addr:    viper.GetString("addr"),
			Debug:   viper.GetBool("debug"),
			LogFile: viper.GetString("logFile"),
		}
		appconfig.ShowConfig(cmd.OutOrStdout(), viper.ConfigFileUsed(), getConfig(), fallback)
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
}
