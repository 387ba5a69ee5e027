package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	subsvc "talking_menu/internal/api/subscription/service"
)

func packagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packages",
		Short: "Manage subscription packages",
	}
	cmd.AddCommand(packagesSeedCmd())
	cmd.AddCommand(packagesListCmd())
	return cmd
}

func packagesSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create missing packages from a YAML file (built-in defaults when --file is empty)",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			pkgs, err := subsvc.LoadPackagesFile(file)
			if err != nil {
				return err
			}

			s, err := connect(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			packages, err := s.packageStore()
			if err != nil {
				return err
			}
			seeded, err := subsvc.NewCatalogService(packages).Seed(commandContext(cmd), pkgs)
			if err != nil {
				return err
			}
			for _, p := range seeded {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d tokens/month\n", p.ID.Hex(), p.Name, p.TokenLimitPerMonth)
			}
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "YAML file with a top-level `packages` list")
	return cmd
}

func packagesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print all packages as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := connect(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			packages, err := s.packageStore()
			if err != nil {
				return err
			}
			list, err := packages.List(commandContext(cmd))
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(map[string]interface{}{"packages": list})
		},
	}
}
