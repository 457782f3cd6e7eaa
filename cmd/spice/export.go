package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-assistant/internal/cli"
	"github.com/Veraticus/spice-assistant/internal/config"
	"github.com/Veraticus/spice-assistant/internal/sheets"
	"github.com/Veraticus/spice-assistant/internal/storage"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger to Google Sheets",
		Long: `Write your ledger entries to a Google Sheets spreadsheet.

Authenticate with either a service account (sheets.service_account_path) or
OAuth2 credentials (sheets.client_id, sheets.client_secret,
sheets.refresh_token). Without sheets.spreadsheet_id a new spreadsheet is
created. GOOGLE_SHEETS_* environment variables are honored as fallbacks.`,
		RunE: runExport,
	}

	cmd.Flags().String("since", "", "only export entries on or after this date (YYYY-MM-DD)")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if settings.User.Name == "" {
		return fmt.Errorf("no user configured: pass --user or set user.name")
	}

	var filter storage.EntryFilter
	if since, _ := cmd.Flags().GetString("since"); since != "" {
		start, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since date %q: %w", since, err)
		}
		filter.Start = &start
	}

	store, err := initStorage(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.GetEntries(ctx, settings.User.Name, filter)
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}

	writer, err := sheets.NewWriter(ctx, sheetsConfig(settings.Sheets), slog.Default())
	if err != nil {
		return err
	}

	id, err := writer.WriteLedger(ctx, settings.User.Name, entries)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d entries to spreadsheet %s", len(entries), id)))
	return nil
}

func sheetsConfig(s config.SheetsSettings) sheets.Config {
	cfg := sheets.DefaultConfig()
	cfg.ServiceAccountPath = s.ServiceAccountPath
	cfg.ClientID = s.ClientID
	cfg.ClientSecret = s.ClientSecret
	cfg.RefreshToken = s.RefreshToken
	cfg.SpreadsheetID = s.SpreadsheetID
	if s.SpreadsheetName != "" {
		cfg.SpreadsheetName = s.SpreadsheetName
	}
	if s.TimeZone != "" {
		cfg.TimeZone = s.TimeZone
	}
	return cfg
}
