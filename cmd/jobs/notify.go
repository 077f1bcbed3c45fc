package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify [interval]",
	Short: "Send digest emails for one interval",
	Long:  "Dispatches digests to active subscriptions on the given interval (daily, weekly or monthly).",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		ctx, cancel := runCtx(cmd)
		defer cancel()

		stats, err := rt.notifier.Send(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%d successful, %d failed, %d skipped (no new entries)\n",
			stats.Sent, stats.Failed, stats.Skipped)
		return nil
	},
}

var mailcheckCmd = &cobra.Command{
	Use:   "mailcheck",
	Short: "Send a test digest through the configured provider",
	Long:  "Renders the digest template with sample data and sends it, verifying credentials and templates.",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		ctx, cancel := runCtx(cmd)
		defer cancel()

		to, _ := cmd.Flags().GetString("to")
		if err := rt.notifier.SendTest(ctx, to); err != nil {
			return err
		}
		fmt.Println("Test digest sent.")
		return nil
	},
}

func init() {
	mailcheckCmd.Flags().String("to", "", "recipient address (defaults to EMAIL_TEST_RECIPIENT)")
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(mailcheckCmd)
}
