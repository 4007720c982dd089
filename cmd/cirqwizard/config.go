package main

import (
	"github.com/cncgen/cirqwizard/configurator"
	"github.com/spf13/cobra"
)

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configurator.DiagnosticAllCfgPrint(a.v, cmd.OutOrStdout())
			return nil
		},
	}
}
