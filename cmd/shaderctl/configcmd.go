package main

import (
	"fmt"

	"github.com/danmuck/shaderctl/internal/config"
	"github.com/spf13/cobra"
)

var configForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configValidateCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write or validate a config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write an example config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteTemplate(args[0], configForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Load and validate a config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "valid: compiler=%s include=%s\n", cfg.Compiler.Path, cfg.Compiler.IncludePath)
		return nil
	},
}
