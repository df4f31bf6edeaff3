package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/conference-central/internal/auth"
	"github.com/iliyamo/conference-central/internal/config"
	"github.com/iliyamo/conference-central/internal/utils"
)

func newTokenCmd() *cobra.Command {
	var id auth.Identity
	var ttl int
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.AccessTTLMin
			}
			tok, err := utils.NewAccessToken(cfg.JWTSecret, id, ttl)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&id.UserID, "user", "u", "", "user id (required)")
	cmd.Flags().StringVarP(&id.Email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&id.Name, "name", "n", "", "display name")
	cmd.Flags().IntVar(&ttl, "ttl", 0, "lifetime in minutes (defaults to ACCESS_TOKEN_TTL_MIN)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
