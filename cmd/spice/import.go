package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-assistant/internal/cli"
	"github.com/Veraticus/spice-assistant/internal/ofx"
	"github.com/Veraticus/spice-assistant/internal/storage"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.ofx>...",
		Short: "Import OFX/QFX bank statements into the ledger",
		Long: `Read OFX or QFX statement files and record each transaction as a ledger
entry. Debits become expenses and credits become income. Transactions that were
already imported are skipped, so a statement can be imported more than once.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("dry-run", false, "parse and report without writing to the ledger")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if settings.User.Name == "" {
		return fmt.Errorf("no user configured: pass --user or set user.name")
	}

	parser := ofx.NewParser(settings.User.Name, slog.Default())
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	var store *storage.SQLiteStorage
	out := cmd.OutOrStdout()
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		entries, err := parser.Parse(ctx, f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", path, err)
		}

		if dryRun {
			fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%s: %d transactions", path, len(entries))))
			for i := range entries {
				e := &entries[i]
				fmt.Fprintf(out, "  %s  %-7s ¥%10s  %s\n", e.Time.Format("2006/01/02"), e.Operation, e.Amount.StringFixed(2), e.Merchant)
			}
			continue
		}

		if store == nil {
			if store, err = initStorage(ctx, settings); err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
		}

		imported, err := store.ImportEntries(ctx, entries)
		if err != nil {
			return fmt.Errorf("failed to save %s: %w", path, err)
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s: imported %d, skipped %d already recorded",
			path, imported, len(entries)-imported)))
	}
	return nil
}
