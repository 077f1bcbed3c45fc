package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "jobs",
	Short: "kvmflows background jobs",
	Long: `Runs the directory sync and notification jobs for Karte von Morgen,
either on cron schedules (serve) or as one-shot commands.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("env-file", "", "load environment from this file before reading config")
	rootCmd.PersistentFlags().Duration("timeout", 0, "abort a one-shot run after this duration (0 = no limit)")

	// Bind flags to viper
	viper.BindPFlag("env_file", rootCmd.PersistentFlags().Lookup("env-file"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
}

func initConfig() {
	// Environment variables: KVM_ENV_FILE, KVM_TIMEOUT, KVM_METRICS_ADDR
	viper.SetEnvPrefix("KVM")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// runCtx derives the context for a one-shot run, honoring --timeout.
func runCtx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout := viper.GetDuration("timeout"); timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}
