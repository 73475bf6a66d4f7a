package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// v holds the configuration shared by every command. Persistent flags are
// bound to it so they override the config file and environment.
var v = viper.New()

var rootCmd = &cobra.Command{
	Use:           "edumaster",
	Short:         "Terminal client for the EduMaster learning platform",
	Long:          "EduMaster: follow learning tracks lesson by lesson, pass quizzes, and practice with quizzes generated from your own documents.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("api", "", "Base URL of the EduMaster API (overrides EDUMASTER_API_BASE_URL)")
	flags.String("db", "", "Path to SQLite database file (overrides EDUMASTER_DB env var)")
	flags.String("config", "", "Path to a YAML config file")
	flags.BoolP("verbose", "v", false, "Mirror logs to stderr")

	_ = v.BindPFlag("api.base_url", flags.Lookup("api"))
	_ = v.BindPFlag("store.path", flags.Lookup("db"))
	_ = v.BindPFlag("log.verbose", flags.Lookup("verbose"))

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(tracksCmd)
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(enrollCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
