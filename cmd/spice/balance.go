package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-assistant/internal/cli"
)

func balanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the ledger balance and this month's spending",
		RunE:  runBalance,
	}

	cmd.Flags().Float64("set-opening", 0, "set the opening balance before reporting")

	return cmd
}

func runBalance(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if settings.User.Name == "" {
		return fmt.Errorf("no user configured: pass --user or set user.name")
	}

	store, err := initStorage(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if cmd.Flags().Changed("set-opening") {
		opening, _ := cmd.Flags().GetFloat64("set-opening")
		if err := store.SetOpeningBalance(ctx, settings.User.Name, opening); err != nil {
			return fmt.Errorf("failed to set opening balance: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Opening balance set to ¥%.2f", opening)))
	}

	balance, err := store.GetBalance(ctx, settings.User.Name)
	if err != nil {
		return fmt.Errorf("failed to get balance: %w", err)
	}
	spent, err := store.GetMonthExpense(ctx, settings.User.Name, time.Now())
	if err != nil {
		return fmt.Errorf("failed to get monthly spending: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle("Ledger for " + settings.User.Name))
	fmt.Fprintf(cmd.OutOrStdout(), "Balance:          ¥%.2f\n", balance)
	fmt.Fprintf(cmd.OutOrStdout(), "Spent this month: ¥%.2f\n", spent)
	return nil
}
