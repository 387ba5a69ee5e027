// tmctl là công cụ quản trị dòng lệnh: seed gói dịch vụ, gán platform admin,
// chạy tay worker subscription và ký token local cho môi trường dev.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"talking_menu/internal/logger"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "tmctl",
		Short:         "Talking Menu admin tool",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(nil)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Shutdown()
		},
	}
	rootCmd.PersistentFlags().String("env-file", "", "Path to env file (default: config/env/<ENV>.env)")

	rootCmd.AddCommand(packagesCmd())
	rootCmd.AddCommand(usersCmd())
	rootCmd.AddCommand(subscriptionsCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
