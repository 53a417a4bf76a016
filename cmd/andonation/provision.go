package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"andonation/internal/config"
	"andonation/internal/repos"
	"andonation/internal/services"
)

func userService(cfg config.Config) (*services.UserService, func(), error) {
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return nil, nil, err
	}
	return services.NewUserService(repos.NewUserRepo(db), newLedger(cfg)), func() { _ = db.Close() }, nil
}

func newProvisionCmd() *cobra.Command {
	var in services.ProvisionInput

	cmd := &cobra.Command{
		Use:     "provision",
		Short:   "Create a user outside the Google sign-in flow",
		Example: `  andonation provision --email admin@andela.co --first Ada --last Obi --role admin --password 'Passw0rd!'`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc, closeDB, err := userService(cfg)
			if err != nil {
				return err
			}
			defer closeDB()
			u, err := svc.Provision(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s [%s]\n", u.ID, u.Email, u.Roles)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&in.FirstName, "first", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last", "", "last name")
	cmd.Flags().StringVar(&in.Password, "password", "", "optional local password")
	cmd.Flags().StringSliceVar(&in.Roles, "role", nil, "extra roles: admin, distributor")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newGrantRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "grant-role <email> <role>",
		Short:   "Add a role to an existing user",
		Example: `  andonation grant-role christopher@andela.co distributor`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc, closeDB, err := userService(cfg)
			if err != nil {
				return err
			}
			defer closeDB()
			u, err := svc.Users.ByEmail(args[0])
			if err != nil {
				return fmt.Errorf("user %s: %w", args[0], err)
			}
			role, err := svc.AddRole(u.ID, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "granted %s to %s\n", role, u.Email)
			return nil
		},
	}
}
