package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/logging"
)

func newBalanceCmd(root *rootOptions) *cobra.Command {
	var walletID int64

	c := &cobra.Command{
		Use:   "balance",
		Short: "Print a wallet's current balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			w, err := a.wallets.GetWallet(logging.WithLogger(cmd.Context(), a.logger), walletID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", w.ID, w.Name, w.Type, w.Balance.StringFixed(domain.CurrencyPlaces))
			return nil
		},
	}
	c.Flags().Int64Var(&walletID, "wallet", 0, "wallet id")
	_ = c.MarkFlagRequired("wallet")
	return c
}

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var (
		walletID int64
		limit    int
		offset   int
	)

	c := &cobra.Command{
		Use:   "history",
		Short: "List a wallet's transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 1 || offset < 0 {
				return fmt.Errorf("--limit must be positive and --offset non-negative: %w", domain.ErrInvalidRequest)
			}

			a, err := openApp(cmd.Context(), root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			txns, total, err := a.poster.ListByWallet(logging.WithLogger(cmd.Context(), a.logger), walletID, limit, offset)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tAMOUNT\tCREATED\tDESCRIPTION")
			for _, t := range txns {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n",
					t.ID, t.TransactionTypeID, t.Amount.StringFixed(domain.CurrencyPlaces),
					t.CreatedAt.Format("2006-01-02 15:04"), t.Description)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d\n", len(txns), total)
			return nil
		},
	}
	c.Flags().Int64Var(&walletID, "wallet", 0, "wallet id")
	c.Flags().IntVar(&limit, "limit", 20, "page size")
	c.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	_ = c.MarkFlagRequired("wallet")
	return c
}

func newSweepCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-idempotency",
		Short: "Delete expired idempotency cache rows once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.idempotency.CleanExpired(cmd.Context(), time.Now().UTC())
			if err != nil {
				return err
			}
			a.logger.Info("expired idempotency entries removed", "count", n)
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d\n", n)
			return nil
		},
	}
}
