package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/logging"
	"github.com/josh-kwaku/shop-ledger/internal/service/posting"
)

type postOptions struct {
	walletID    int64
	typeID      int64
	amount      string
	description string
}

func (o postOptions) request() (posting.PostRequest, error) {
	amount, err := decimal.NewFromString(o.amount)
	if err != nil {
		return posting.PostRequest{}, fmt.Errorf("--amount %q: %w", o.amount, domain.ErrInvalidAmount)
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return posting.PostRequest{}, fmt.Errorf("--amount %q: %w", o.amount, err)
	}
	return posting.PostRequest{
		WalletID:          o.walletID,
		TransactionTypeID: o.typeID,
		Amount:            amount,
		Description:       o.description,
	}, nil
}

func newPostCmd(root *rootOptions) *cobra.Command {
	opts := postOptions{}

	c := &cobra.Command{
		Use:   "post",
		Short: "Post a transaction and update the wallet balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := opts.request()
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := logging.WithLogger(cmd.Context(), a.logger)
			t, err := a.poster.Post(ctx, req)
			if err != nil {
				return err
			}

			w, err := a.wallets.GetWallet(ctx, t.WalletID)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "posted transaction %d (%d entries), wallet %d balance %s\n",
				t.ID, len(t.Entries), w.ID, w.Balance.StringFixed(domain.CurrencyPlaces))
			return nil
		},
	}

	c.Flags().Int64Var(&opts.walletID, "wallet", 0, "wallet id")
	c.Flags().Int64Var(&opts.typeID, "type", 0, "transaction type id")
	c.Flags().StringVar(&opts.amount, "amount", "", "positive amount with at most 2 decimal places")
	c.Flags().StringVar(&opts.description, "description", "", "free-text description")
	for _, f := range []string{"wallet", "type", "amount"} {
		_ = c.MarkFlagRequired(f)
	}
	return c
}
