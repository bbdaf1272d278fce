package createuser

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/helpdesk-kit/helpdesk/internal/cli"
	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/service"
)

// UserCreator stores accounts.
type UserCreator interface {
	CreateUser(ctx context.Context, input service.RegisterInput, isStaff bool) (*domain.User, error)
}

type options struct {
	username string
	email    string
	password string
	staff    bool
}

// NewCommand returns the create-user command. It is the only way to create
// staff accounts.
func NewCommand() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			container, err := cli.Bootstrap(ctx)
			if err != nil {
				return err
			}
			defer container.Logger.Sync() //nolint:errcheck
			defer container.Close()

			return run(ctx, cmd.OutOrStdout(), container.Auth, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.username, "username", "u", "", "Username (required)")
	cmd.Flags().StringVarP(&opts.email, "email", "e", "", "Email address (required)")
	cmd.Flags().StringVarP(&opts.password, "password", "p", "", "Password (required)")
	cmd.Flags().BoolVar(&opts.staff, "staff", false, "Grant staff access")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func run(ctx context.Context, out io.Writer, creator UserCreator, opts options) error {
	user, err := creator.CreateUser(ctx, service.RegisterInput{
		Username: opts.username,
		Email:    opts.email,
		Password: opts.password,
	}, opts.staff)
	if err != nil {
		return err
	}
	role := "user"
	if user.IsStaff {
		role = "staff user"
	}
	fmt.Fprintf(out, "Created %s %s (%s)\n", role, user.Username, user.ID)
	return nil
}
