package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskroom/taskroom/internal/modules/model"
	"github.com/taskroom/taskroom/internal/modules/repo"
	"github.com/taskroom/taskroom/internal/modules/service"
	"github.com/taskroom/taskroom/internal/pkg/utils"
)

type createUserOpts struct {
	username string
	email    string
	password string
	admin    bool
}

func newCreateUserCmd() *cobra.Command {
	var o createUserOpts

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user account",
		Long: `Create a user account. Without --password a random one is generated and printed once.
Members are created unless --admin is given.`,
		Args: cobra.NoArgs,
		RunE: withDB(func(cmd *cobra.Command, _ []string, d *gorm.DB) error {
			return runCreateUser(cmd.Context(), cmd, d, o)
		}),
	}

	cmd.Flags().StringVar(&o.username, "username", "", "login name (required, at most 15 characters)")
	cmd.Flags().StringVar(&o.email, "email", "", "email address")
	cmd.Flags().StringVar(&o.password, "password", "", "password; generated when empty")
	cmd.Flags().BoolVar(&o.admin, "admin", false, "grant the admin role")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func runCreateUser(ctx context.Context, cmd *cobra.Command, d *gorm.DB, o createUserOpts) error {
	if ctx == nil {
		ctx = context.Background()
	}

	generated := false
	if o.password == "" {
		pw, err := utils.GeneratePassword()
		if err != nil {
			return fmt.Errorf("generate password: %w", err)
		}
		o.password = pw
		generated = true
	}

	role := model.RoleMember
	if o.admin {
		role = model.RoleAdmin
	}

	svc := service.NewUserService(repo.NewUserRepo(d), zap.NewNop())
	u, err := svc.Create(ctx, service.UserInput{
		Username: &o.username,
		Email:    &o.email,
		Password: &o.password,
		UserType: &role,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "created user #%d %s (%s)\n", u.ID, u.Username, u.UserType.Label())
	if generated {
		fmt.Fprintf(out, "password: %s\n", o.password)
		fmt.Fprintln(out, "store it now, it is not shown again")
	}
	return nil
}
