package main

import (
	"os"

	"github.com/spf13/cobra"

	"schoolportal_backend/internals/seeds"
)

func seedCmd() *cobra.Command {
	var catalogPath, usersPath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load levels, grades, concepts and initial users",
		Long: `Load the default catalog and accounts. Already present rows are left alone,
so running it twice is safe. Pass --catalog or --users to use your own JSON files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var f seeds.Files
			var err error
			if catalogPath != "" {
				if f.Catalog, err = os.ReadFile(catalogPath); err != nil {
					return err
				}
			}
			if usersPath != "" {
				if f.Users, err = os.ReadFile(usersPath); err != nil {
					return err
				}
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()
			return seeds.RunAllSeeds(cmd.Context(), e.db, e.authService(), f, e.log)
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog JSON file")
	cmd.Flags().StringVar(&usersPath, "users", "", "users JSON file")
	return cmd
}
