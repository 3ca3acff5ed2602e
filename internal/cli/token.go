package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shenikar/disaster_resource_system/internal/auth"
)

func newTokenCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", userID, err)
			}
			// Токен выпускается только для существующей учетной записи
			if _, err := current.users.ResolveActor(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to resolve user: %w", err)
			}

			token, err := auth.IssueToken(id, current.cfg.JWTSecret, current.cfg.TokenTTL)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
