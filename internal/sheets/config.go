// Package sheets exports ledger entries to a Google Sheets spreadsheet.
package sheets

import (
	"fmt"
	"time"

	"github.com/Veraticus/spice-assistant/internal/common"
)

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
	EnableFormatting   bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  "Spice Ledger",
		TimeZone:         "Asia/Shanghai",
		EnableFormatting: true,
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
	}
}

// Validate checks that exactly one authentication method is configured.
func (c *Config) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	switch {
	case !hasOAuth && !hasServiceAccount:
		return fmt.Errorf("%w: sheets needs a service account or OAuth2 client id, secret and refresh token", common.ErrMissingConfig)
	case hasOAuth && hasServiceAccount:
		return fmt.Errorf("%w: multiple sheets authentication methods configured; use either OAuth2 or service account", common.ErrInvalidConfig)
	}

	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: sheets batch size must be positive", common.ErrInvalidConfig)
	}
	if c.RetryAttempts < 0 || c.RetryDelay < 0 {
		return fmt.Errorf("%w: sheets retry settings cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}
