package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentfashion/storefront/pkg/enums"
	"github.com/agentfashion/storefront/pkg/types"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask the shopping assistant",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		reply, err := storefront.Chat.Send(cmd.Context(), strings.Join(args, " "), nil, func(chunk types.ChatChunk) {
			if chunk.Type == enums.ChunkTypeText {
				fmt.Fprint(out, chunk.Content)
			}
		})
		fmt.Fprintln(out)
		if err != nil {
			return err
		}
		for _, p := range reply.Products {
			fmt.Fprintf(out, "  - %s (%s) %s\n", p.Name, p.ProductID, p.Price.StringFixed(0))
		}
		return nil
	},
}
