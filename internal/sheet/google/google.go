// Package google stores ledger spreadsheets in Google Sheets, using Drive for sharing and deletion.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/MrJamesThe3rd/tally/internal/sheet"
)

const (
	gridRows    = 1000
	gridColumns = 26
)

type Config struct {
	CredentialsFile string
	ParentFolderID  string
	TimeZone        string
	Locale          string
	// Timeout bounds every individual API call.
	Timeout time.Duration
}

type Store struct {
	sheets *sheets.Service
	drive  *drive.Service
	cfg    Config
}

// New authenticates with the service-account key in cfg.CredentialsFile.
func New(ctx context.Context, cfg Config) (*Store, error) {
	key, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, key, sheets.SpreadsheetsScope, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	sheetsSvc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}

	driveSvc, err := drive.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("creating drive client: %w", err)
	}

	return newStore(sheetsSvc, driveSvc, cfg), nil
}

func newStore(sheetsSvc *sheets.Service, driveSvc *drive.Service, cfg Config) *Store {
	return &Store{sheets: sheetsSvc, drive: driveSvc, cfg: cfg}
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, s.cfg.Timeout)
}

func (s *Store) CreateDocument(ctx context.Context, layout sheet.Layout) (sheet.Handle, error) {
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	created, err := s.sheets.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    layout.DocumentTitle(),
			Locale:   s.cfg.Locale,
			TimeZone: s.cfg.TimeZone,
		},
		Sheets: []*sheets.Sheet{{
			Properties: &sheets.SheetProperties{
				Title:          sheet.TabName,
				GridProperties: &sheets.GridProperties{RowCount: gridRows, ColumnCount: gridColumns},
			},
		}},
	}).Context(callCtx).Do()
	if err != nil {
		return sheet.Handle{}, fmt.Errorf("creating spreadsheet: %w", classify(err))
	}

	id := created.SpreadsheetId
	slog.Info("spreadsheet created", "spreadsheet_id", id)

	var tabID int64
	if len(created.Sheets) > 0 && created.Sheets[0].Properties != nil {
		tabID = created.Sheets[0].Properties.SheetId
	}

	handle := sheet.Handle{ID: id, URL: created.SpreadsheetUrl}
	if handle.URL == "" {
		handle.URL = sheet.URL(id)
	}

	layoutCtx, cancelLayout := s.withTimeout(ctx)
	defer cancelLayout()

	_, err = s.sheets.Spreadsheets.BatchUpdate(id, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: layoutRequests(tabID, layout),
	}).Context(layoutCtx).Do()
	if err != nil {
		return handle, fmt.Errorf("applying layout to %s: %w", id, classify(err))
	}

	if s.cfg.ParentFolderID != "" {
		moveCtx, cancelMove := s.withTimeout(ctx)
		defer cancelMove()

		_, err = s.drive.Files.Update(id, &drive.File{}).
			AddParents(s.cfg.ParentFolderID).
			RemoveParents("root").
			SupportsAllDrives(true).
			Context(moveCtx).
			Do()
		if err != nil {
			return handle, fmt.Errorf("moving %s to folder: %w", id, classify(err))
		}
	}

	return handle, nil
}

func (s *Store) SetPermissions(ctx context.Context, id, role string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.drive.Permissions.Create(id, &drive.Permission{
		Type: "anyone",
		Role: role,
	}).SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sharing %s: %w", id, classify(err))
	}

	return nil
}

func (s *Store) ReadRows(ctx context.Context, id, rng string) ([][]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.sheets.Spreadsheets.Values.Get(id, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		// Without this, date cells come back as serial day numbers.
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("reading %s of %s: %w", rng, id, classify(err))
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = cellString(cell)
		}
	}

	return rows, nil
}

func (s *Store) AppendRow(ctx context.Context, id, rng string, row []string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.sheets.Spreadsheets.Values.Append(id, rng, &sheets.ValueRange{
		Values: [][]interface{}{userEntered(row)},
	}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("appending to %s: %w", id, classify(err))
	}

	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.drive.Files.Delete(id).SupportsAllDrives(true).Context(ctx).Do(); err != nil {
		return fmt.Errorf("deleting %s: %w", id, classify(err))
	}

	return nil
}

// userEntered prepares row for USER_ENTERED input. Text columns get a leading
// apostrophe so Sheets keeps them verbatim: no formulas, no lost leading zeros.
// Dates and amounts are still parsed.
func userEntered(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		if v != "" && sheet.IsTextColumn(i) {
			v = "'" + v
		}

		cells[i] = v
	}

	return cells
}

func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %w", sheet.ErrNotFound, err)
	}

	return err
}

func cellString(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(c)
	default:
		return fmt.Sprint(c)
	}
}
