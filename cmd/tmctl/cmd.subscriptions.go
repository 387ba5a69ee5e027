package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func subscriptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscriptions",
		Short: "Subscription maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "process-due",
		Short: "Expire or renew subscriptions past their end date (same job as the server worker)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := connect(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			billing, err := s.billing()
			if err != nil {
				return err
			}
			result, err := billing.ProcessDue(commandContext(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "expired: %d, renewed: %d\n", result.Expired, result.Renewed)
			return nil
		},
	})
	return cmd
}
