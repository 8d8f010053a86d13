package sheets

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	sheetsapi "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"

	"pine-backend/internal/config"
)

// appendRange covers whatever columns exist; the API finds the first free
// row on Sheet1.
const appendRange = "Sheet1!A:Z"

const spreadsheetScope = "https://www.googleapis.com/auth/spreadsheets"

type Client struct {
	service       *sheetsapi.Service
	spreadsheetID string
}

// NewClient builds a Sheets client authenticated as the configured service
// account. Returns nil without error when the sheet or credentials are not
// configured, which downgrades the ledger stage to a no-op.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.SheetsConfigured() {
		return nil, nil
	}

	jwtConfig := &jwt.Config{
		Email:      cfg.GoogleClientEmail,
		PrivateKey: []byte(cfg.GooglePrivateKey),
		Scopes:     []string{spreadsheetScope},
		TokenURL:   google.JWTTokenURL,
	}

	service, err := sheetsapi.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("sheets service init: %w", err)
	}

	return &Client{
		service:       service,
		spreadsheetID: cfg.SheetID,
	}, nil
}

// AppendRow appends one ledger row. Appends are order-preserving and never
// deduplicate; replaying a row produces two rows.
func (c *Client) AppendRow(ctx context.Context, row []string) error {
	values := make([]interface{}, len(row))
	for i, cell := range row {
		values[i] = cell
	}

	valueRange := &sheetsapi.ValueRange{
		Values: [][]interface{}{values},
	}

	_, err := c.service.Spreadsheets.Values.
		Append(c.spreadsheetID, appendRange, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets append: %w", err)
	}
	return nil
}
