package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	nexus "github.com/nexuscloud/nexus"
	"github.com/nexuscloud/nexus/internal/registry"
)

// user subcommands operate directly on the persisted account file. They are
// bootstrap tooling for operators without a running daemon; the HTTP API is
// the normal path.

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage panel accounts on disk",
	}
	cmd.AddCommand(newUserAddCmd(), newUserListCmd(), newUserDeleteCmd())
	return cmd
}

func loadRegistry(configPath string) (*registry.Registry, error) {
	cfg, err := nexus.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return registry.Load(cfg.DataDir, cfg.Admin.Username, cfg.Admin.Password)
}

func newUserAddCmd() *cobra.Command {
	var f UserFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(f.ConfigPath)
			if err != nil {
				return err
			}
			role := registry.Role(f.Role)
			if role != registry.RoleAdmin {
				role = registry.RoleUser
			}
			if err := reg.CreateAccount(f.Username, f.Password, role); err != nil {
				return err
			}
			fmt.Printf("created %s (%s)\n", f.Username, role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.ConfigPath, "config", "c", "", "path to TOML config file")
	cmd.Flags().StringVarP(&f.Username, "username", "u", "", "account name")
	cmd.Flags().StringVarP(&f.Password, "password", "p", "", "account password")
	cmd.Flags().StringVarP(&f.Role, "role", "r", "user", "account role (admin|user)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUserListCmd() *cobra.Command {
	var f UserFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(f.ConfigPath)
			if err != nil {
				return err
			}
			accounts := reg.Accounts()
			names := make([]string, 0, len(accounts))
			for u := range accounts {
				names = append(names, u)
			}
			sort.Strings(names)
			for _, u := range names {
				fmt.Printf("%s\t%s\n", u, accounts[u].Role)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.ConfigPath, "config", "c", "", "path to TOML config file")
	return cmd
}

func newUserDeleteCmd() *cobra.Command {
	var f UserFlags
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(f.ConfigPath)
			if err != nil {
				return err
			}
			if err := reg.DeleteAccount(f.Username); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", f.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.ConfigPath, "config", "c", "", "path to TOML config file")
	cmd.Flags().StringVarP(&f.Username, "username", "u", "", "account name")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
