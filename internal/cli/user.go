package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shenikar/disaster_resource_system/internal/models"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(newUserCreateCmd())
	cmd.AddCommand(newUserApproveCmd())

	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var (
		user           models.User
		role           string
		bootstrapAdmin bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Long: `Create a user account. Citizens are approved immediately; coordinators and
admins wait for an administrator. --bootstrap-admin creates the first approved
admin and fails if one already exists.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user.Role = models.Role(role)

			var err error
			if bootstrapAdmin {
				err = current.users.BootstrapAdmin(ctx, &user)
			} else {
				err = current.users.RegisterUser(ctx, &user)
			}
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s), approved: %t\n",
				user.Role, user.Username, user.ID, user.IsApproved)
			return nil
		},
	}

	cmd.Flags().StringVar(&user.Username, "username", "", "login name (required)")
	cmd.Flags().StringVar(&user.Email, "email", "", "email address")
	cmd.Flags().StringVar(&user.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&user.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&user.PhoneNumber, "phone", "", "phone number")
	cmd.Flags().StringVar(&role, "role", string(models.RoleCitizen), "role: citizen, coordinator, admin")
	cmd.Flags().BoolVar(&bootstrapAdmin, "bootstrap-admin", false, "create the first approved admin")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func newUserApproveCmd() *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "approve [user-id]",
		Short: "Approve a pending account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}
			actor, err := current.actorFlag(ctx, as)
			if err != nil {
				return err
			}

			user, err := current.users.ApproveUser(ctx, actor, id)
			if err != nil {
				return fmt.Errorf("failed to approve user: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Approved %s %s\n", user.Role, user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "id of the approving admin (required)")

	return cmd
}
