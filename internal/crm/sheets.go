package crm

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/asjidimtiaz/leadqual/internal/domain"
)

const defaultSheetName = "Leads"

// SheetsSink appends each lead as a row in a Google Sheets spreadsheet,
// authenticated with a service account credentials file.
type SheetsSink struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsSink reads the service account credentials and builds the sink.
func NewSheetsSink(ctx context.Context, credentialsFile, spreadsheetID, sheetName string) (*SheetsSink, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	if sheetName == "" {
		sheetName = defaultSheetName
	}
	return &SheetsSink{service: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func (s *SheetsSink) Name() string { return "sheets" }

// Create appends one row. Column order matches the sheet header:
// created, name, email, phone, service, timeline, score, tier, source, message.
func (s *SheetsSink) Create(ctx context.Context, lead domain.Lead) error {
	row := []any{
		lead.CreatedAt.Format(time.RFC3339),
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Service,
		lead.Timeline,
		lead.Score,
		string(lead.Tier),
		lead.Source,
		lead.Message,
	}

	_, err := s.service.Spreadsheets.Values.Append(
		s.spreadsheetID,
		s.sheetName,
		&sheets.ValueRange{Values: [][]any{row}},
	).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("appending lead row: %w", err)
	}
	return nil
}
