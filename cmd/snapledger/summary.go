package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avoronov/snapledger/internal/cli"
	"github.com/avoronov/snapledger/internal/model"
)

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show net amounts per category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rows, err := store.SummaryByCategory(ctx, currentUserID())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render("Nothing to summarize yet."))
				return nil
			}

			fmt.Fprintln(out, cli.TitleStyle.Render("Per-category totals"))
			var net float64
			for _, row := range rows {
				fmt.Fprintf(out, "%s %-14s %10.2f  %s\n",
					model.CategoryEmoji(row.Category), row.Category, row.Net,
					cli.SubtleStyle.Render(fmt.Sprintf("%d receipt(s)", row.Count)))
				net += row.Net
			}
			fmt.Fprintf(out, "%s\n", cli.SuccessStyle.Render(fmt.Sprintf("Net: %.2f", net)))
			return nil
		},
	}
}
