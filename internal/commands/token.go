package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"saldo/internal/config"
	"saldo/internal/middleware"
	"saldo/internal/uuid"
)

func newTokenCommand() *cobra.Command {
	var userID string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development access token",
		Long: "Signs a token with JWT_SECRET and JWT_ISSUER. Production tokens come from the " +
			"identity provider; this is for local testing only.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cfg.IsProduction() {
				return fmt.Errorf("refusing to issue tokens in production")
			}
			if userID == "" {
				userID = uuid.New()
			} else if userID, err = uuid.Parse(userID); err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			token, err := middleware.GenerateToken(cfg.JWTSecret, cfg.JWTIssuer, userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "subject user id (random when empty)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}
