package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func favoritesCMD() *cobra.Command {
	var favorites = &cobra.Command{
		Use:   "favorites",
		Short: "Manage saved items",
	}

	var list = &cobra.Command{
		Use:   "list",
		Short: "List saved items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			a, err := newApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.session.ListFavorites(ctx)
			if err != nil {
				return fmt.Errorf("failed to list favorites: %w", err)
			}
			renderItems(cmd.OutOrStdout(), items)
			return nil
		},
	}

	var remove = &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a saved item by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			a, err := newApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.session.RemoveFavorite(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to remove favorite: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Removed %s, %d favorites left\n", args[0], len(items))
			renderItems(out, items)
			return nil
		},
	}

	favorites.AddCommand(list, remove)
	return favorites
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
