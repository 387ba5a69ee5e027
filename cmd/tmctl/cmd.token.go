package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"talking_menu/internal/utility"
)

// tokenConfig chỉ cần JWT_SECRET, không yêu cầu MongoDB như config của server
type tokenConfig struct {
	JwtSecret string `env:"JWT_SECRET"`
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Local auth tokens (AUTH_PROVIDER=local only)",
	}
	cmd.AddCommand(tokenIssueCmd())
	return cmd
}

func tokenIssueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a bearer token with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			if envFile, _ := cmd.Flags().GetString("env-file"); envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("load env file: %w", err)
				}
			}
			cfg := tokenConfig{}
			if err := env.Parse(&cfg); err != nil {
				return err
			}
			secret, _ := cmd.Flags().GetString("secret")
			if secret == "" {
				secret = cfg.JwtSecret
			}
			if secret == "" {
				return fmt.Errorf("JWT_SECRET is not set (use --secret)")
			}

			uid, _ := cmd.Flags().GetString("uid")
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			token, err := utility.NewLocalJWTVerifier(secret).IssueToken(uid, email, name, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("uid", "", "Subject (user id)")
	cmd.Flags().String("email", "", "Email claim")
	cmd.Flags().String("name", "", "Name claim")
	cmd.Flags().String("secret", "", "Signing secret (defaults to JWT_SECRET)")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}
