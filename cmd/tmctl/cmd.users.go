package main

import (
	"fmt"

	"github.com/spf13/cobra"

	authsvc "talking_menu/internal/api/auth/service"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "promote [uid]",
		Short: "Grant the platform admin role to a user (created if missing)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := connect(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			users, err := s.userStore()
			if err != nil {
				return err
			}
			if err := authsvc.NewAuthService(users).PromotePlatformAdmin(commandContext(cmd), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now a platform admin\n", args[0])
			return nil
		},
	})
	return cmd
}
