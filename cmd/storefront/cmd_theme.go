package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentfashion/storefront/pkg/enums"
)

var themeCmd = &cobra.Command{
	Use:   "theme [light|dark|toggle]",
	Short: "Show or change the color theme",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		switch {
		case len(args) == 0:
		case args[0] == "toggle":
			if _, err := storefront.Preferences.Toggle(ctx); err != nil {
				return err
			}
		default:
			theme, err := enums.ParseTheme(args[0])
			if err != nil {
				return err
			}
			if err := storefront.Preferences.SetTheme(ctx, theme); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", storefront.Preferences.Theme())
		return nil
	},
}
