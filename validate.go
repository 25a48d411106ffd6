package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/drew/stratsite/internal/config"
)

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a config file for errors and warnings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.cfgFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				path = config.DefaultConfigPath
			}

			result, err := config.ValidateConfigFile(path)
			if err != nil {
				return err
			}
			config.PrintValidationResult(opts.stdout, path, result)
			if !result.Valid {
				return errors.New("configuration is invalid")
			}
			return nil
		},
	}
}
