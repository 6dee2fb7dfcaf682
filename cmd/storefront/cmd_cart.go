package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agentfashion/storefront/internal/cart"
)

var (
	cartQuantity int
	shipAddress  string
	payMethod    string
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show the cart of the signed-in user",
	RunE:  runCartList,
}

var cartAddCmd = &cobra.Command{
	Use:   "add [variant-id]",
	Short: "Add a product variant to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := requireSession(cmd)
		if err != nil {
			return err
		}
		awaitStartup(cmd)
		item, err := storefront.Cart.AddToCart(cmd.Context(), current.User.ID, args[0], cartQuantity)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s x%d in cart (%s)\n", item.ProductName, item.Quantity, item.CartItemID)
		return nil
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update [cart-item-id] [quantity]",
	Short: "Change the quantity of a cart line",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(cmd); err != nil {
			return err
		}
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("quantity must be a number: %w", err)
		}
		awaitStartup(cmd)
		item, err := storefront.Cart.UpdateQuantity(cmd.Context(), args[0], quantity)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s x%d\n", item.ProductName, item.Quantity)
		return nil
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove [cart-item-id]",
	Short: "Remove a cart line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(cmd); err != nil {
			return err
		}
		awaitStartup(cmd)
		if err := storefront.Cart.RemoveItem(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Removed.")
		return nil
	},
}

var cartCheckoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for the whole cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := requireSession(cmd)
		if err != nil {
			return err
		}
		awaitStartup(cmd)
		order, err := storefront.Cart.Checkout(cmd.Context(), current.User.ID, cart.CheckoutInput{
			ShippingAddress: shipAddress,
			PaymentMethod:   payMethod,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Order %s placed: %s (%s)\n", order.OrderID, order.TotalAmount.StringFixed(0), order.Status)
		return nil
	},
}

func init() {
	cartAddCmd.Flags().IntVarP(&cartQuantity, "quantity", "n", 1, "quantity to add")
	cartCheckoutCmd.Flags().StringVar(&shipAddress, "address", "", "shipping address")
	cartCheckoutCmd.Flags().StringVar(&payMethod, "payment", "cod", "payment method")
	_ = cartCheckoutCmd.MarkFlagRequired("address")
	cartCmd.AddCommand(cartAddCmd, cartUpdateCmd, cartRemoveCmd, cartCheckoutCmd)
}

func runCartList(cmd *cobra.Command, args []string) error {
	if _, err := requireSession(cmd); err != nil {
		return err
	}
	awaitStartup(cmd)
	snap := storefront.Cart.Snapshot()
	if snap.IsEmpty() {
		fmt.Fprintln(cmd.OutOrStdout(), "Your cart is empty.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tPRODUCT\tVARIANT\tQTY\tUNIT\tTOTAL")
	for _, item := range snap.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%d\t%s\t%s\n",
			item.CartItemID, item.ProductName, item.Color, item.Size, item.Quantity,
			item.UnitPrice.StringFixed(0), item.LineTotal().StringFixed(0))
	}
	fmt.Fprintf(tw, "\t\t\t%d\t\t%s\n", snap.TotalCount, snap.TotalAmount.StringFixed(0))
	return tw.Flush()
}
