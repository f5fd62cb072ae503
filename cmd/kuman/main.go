package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kuman/config"
	"github.com/shashiranjanraj/kuman/pkg/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var (
	apiFlag      string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:           "kuman",
	Short:         "KU-MAN admin console",
	Long:          "kuman is the administrator console of the KU-MAN campus delivery service.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		if apiFlag != "" {
			config.Set("API_BASE_URL", apiFlag)
		}
		if logLevelFlag != "" {
			config.Set("LOG_LEVEL", logLevelFlag)
		}
		logger.SetOutput(os.Stderr)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiFlag, "api", "", "KU-MAN API base URL (overrides API_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "debug|info|warn|error")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Print JSON instead of tables")

	// Session
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	// Monitoring
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(exportCmd)

	// Support
	rootCmd.AddCommand(supportCmd)
	rootCmd.AddCommand(chatCmd)

	// Accounts
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(emailCmd)

	// Canteens
	rootCmd.AddCommand(canteensCmd)
	rootCmd.AddCommand(shopsCmd)
}
