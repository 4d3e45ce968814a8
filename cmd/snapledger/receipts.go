package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/avoronov/snapledger/internal/cli"
	"github.com/avoronov/snapledger/internal/common"
	"github.com/avoronov/snapledger/internal/model"
)

func receiptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipts",
		Short: "Browse saved receipts",
	}
	cmd.AddCommand(receiptsListCmd())
	cmd.AddCommand(receiptsSearchCmd())
	cmd.AddCommand(receiptsDeleteCmd())
	return cmd
}

func receiptsListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent receipts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			receipts, err := store.ListReceipts(ctx, currentUserID(), limit)
			if err != nil {
				return err
			}
			printReceipts(cmd, receipts)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of receipts to show")
	return cmd
}

func receiptsSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <merchant>",
		Short: "Search receipts by merchant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			receipts, err := store.SearchReceipts(ctx, currentUserID(), args[0])
			if err != nil {
				return err
			}
			printReceipts(cmd, receipts)
			return nil
		},
	}
}

func receiptsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid receipt id %q", args[0])
			}

			ctx := cmd.Context()
			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteReceipt(ctx, id, currentUserID()); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), cli.ErrorStyle.Render(common.UserMessage(err)))
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render(fmt.Sprintf("Deleted receipt %d.", id)))
			return nil
		},
	}
}

func printReceipts(cmd *cobra.Command, receipts []model.Receipt) {
	out := cmd.OutOrStdout()
	if len(receipts) == 0 {
		fmt.Fprintln(out, cli.SubtleStyle.Render("No receipts found."))
		return
	}

	for _, r := range receipts {
		date := r.Date
		if date == "" {
			date = "no date"
		}
		sign := "-"
		if r.IsIncome {
			sign = "+"
		}
		fmt.Fprintf(out, "#%d  %s %-24s %s%9.2f  %s\n",
			r.ID, model.CategoryEmoji(r.Category), r.Merchant, sign, r.TotalAmount,
			cli.SubtleStyle.Render(date))
	}
}
