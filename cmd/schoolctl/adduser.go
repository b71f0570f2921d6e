package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"schoolportal_backend/internals/features/users/auth/dto"
	helper "schoolportal_backend/internals/helpers"
)

func adduserCmd() *cobra.Command {
	var (
		role     string
		password string
		parentID int64
	)
	cmd := &cobra.Command{
		Use:   "adduser [username]",
		Short: "Create a login account",
		Long: `Create a login account for the portal.

Parent accounts must be linked to an existing parent record.

Examples:
  schoolctl adduser admin --role admin --password 'change-me-now'
  schoolctl adduser ana --role parent --parent-id 12 --password 'secret-pass'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.CreateUserRequest{Username: args[0], Password: password, Role: role}
			if parentID > 0 {
				req.ParentID = &parentID
			}
			if err := helper.NewValidator().Struct(req); err != nil {
				return err
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			u, err := e.authService().CreateUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d, role %s)\n", u.UserName, u.UserID, u.UserRole)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "teacher", "admin, teacher or parent")
	cmd.Flags().StringVar(&password, "password", "", "initial password, at least 8 characters")
	cmd.Flags().Int64Var(&parentID, "parent-id", 0, "parent record for parent accounts")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
