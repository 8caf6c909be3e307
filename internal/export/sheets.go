// Package export pushes derived report rows to a Google Sheet so the ledger
// can be eyeballed outside the service.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"tally/internal/ledger"
)

// SheetsClient appends report rows to one spreadsheet tab.
type SheetsClient struct {
	svc           *gsheet.Service
	spreadsheetID string
	reportSheet   string
}

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: REPORT_SHEET_NAME (default "Reports").
func NewFromEnv(ctx context.Context) (*SheetsClient, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	reportSheet := strings.TrimSpace(os.Getenv("REPORT_SHEET_NAME"))
	if reportSheet == "" {
		reportSheet = "Reports"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsClient{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		reportSheet:   reportSheet,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// AppendSummaryRow appends one snapshot row: timestamp, totals in whole
// currency units, transaction count, and top spending category.
func (c *SheetsClient) AppendSummaryRow(ctx context.Context, summary ledger.Summary, breakdown ledger.Breakdown) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	topCategory := ""
	var topSpend int64
	for name, spend := range breakdown.ByCategory {
		if spend.Cents > topSpend || (spend.Cents == topSpend && (topCategory == "" || name < topCategory)) {
			topCategory = name
			topSpend = spend.Cents
		}
	}

	row := []any{
		time.Now().UTC().Format(time.RFC3339),
		summary.TotalIncome.Amount(),
		summary.TotalExpense.Amount(),
		summary.TotalBalance.Amount(),
		summary.TransactionCount,
		topCategory,
	}

	rng := fmt.Sprintf("%s!A:F", c.reportSheet)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append summary row to %s: %w", c.reportSheet, err)
	}

	slog.InfoContext(ctx, "Summary row appended to sheet",
		"sheet", c.reportSheet,
		"transaction_count", summary.TransactionCount,
		"top_category", topCategory)
	return nil
}
