// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the LumaChat CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lumachat",
		Short: "LumaChat - token-authenticated chat with bounded per-user history",
		Long: `LumaChat serves a JSON API for account registration, session-token
authentication, and per-user message logs bounded to a fixed window.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
