package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var wishlistCmd = &cobra.Command{
	Use:   "wishlist",
	Short: "Show saved products",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := storefront.Wishlist.Items()
		if len(ids) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Your wishlist is empty.")
			return nil
		}
		awaitStartup(cmd)
		for _, id := range ids {
			name := "(not in catalog)"
			if p, ok := storefront.Catalog.ProductByID(id); ok {
				name = p.Name
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", id, name)
		}
		return nil
	},
}

var wishlistToggleCmd = &cobra.Command{
	Use:   "toggle [product-id]",
	Short: "Save or unsave a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		saved, err := storefront.Wishlist.Toggle(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if saved {
			fmt.Fprintln(cmd.OutOrStdout(), "Saved.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Removed from wishlist.")
		}
		return nil
	},
}

func init() {
	wishlistCmd.AddCommand(wishlistToggleCmd)
}
