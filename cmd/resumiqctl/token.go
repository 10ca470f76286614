package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/akashvaddapelli/Resumeiq/internal/auth"
)

func newTokenCommand() *cobra.Command {
	var ttl time.Duration

	command := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Sign a development bearer token with auth.jwtsecret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("auth.jwtsecret (AUTH_JWT_SECRET) is not set")
			}

			token, err := auth.GenerateToken(cfg.Auth.JWTSecret, args[0], ttl)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	command.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return command
}
