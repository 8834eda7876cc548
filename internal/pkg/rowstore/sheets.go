package rowstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/sheets/v4"
)

// SheetsStore is the Google Sheets backend. Values are written with
// USER_ENTERED so the document parses dates and keeps its own formulas.
type SheetsStore struct {
	srv           *sheets.Service
	spreadsheetID string
}

func NewSheetsStore(srv *sheets.Service, spreadsheetID string) *SheetsStore {
	return &SheetsStore{srv: srv, spreadsheetID: spreadsheetID}
}

func (s *SheetsStore) ReadRange(ctx context.Context, rng Range) ([][]string, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, rng.A1()).Context(ctx).Do()
	if err != nil {
		return nil, sheetsError(rng, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, v := range raw {
			row[i] = fmt.Sprint(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *SheetsStore) AppendRow(ctx context.Context, rng Range, row []string) (int, error) {
	vr := &sheets.ValueRange{Values: [][]interface{}{toValues(row)}}
	resp, err := s.srv.Spreadsheets.Values.Append(s.spreadsheetID, rng.A1(), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, sheetsError(rng, err)
	}
	if resp.Updates == nil {
		return 0, fmt.Errorf("append %s: response carried no updated range", rng.A1())
	}
	return ParseRowNumber(resp.Updates.UpdatedRange)
}

func (s *SheetsStore) UpdateCells(ctx context.Context, rng Range, values [][]string) error {
	rows := make([][]interface{}, len(values))
	for i, v := range values {
		rows[i] = toValues(v)
	}
	_, err := s.srv.Spreadsheets.Values.Update(s.spreadsheetID, rng.A1(), &sheets.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return sheetsError(rng, err)
	}
	return nil
}

func (s *SheetsStore) SheetExists(ctx context.Context, sheet string) (bool, error) {
	_, ok, err := s.sheetID(ctx, sheet)
	return ok, err
}

func (s *SheetsStore) AddSheet(ctx context.Context, sheet string, header []string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: sheet},
			},
		}},
	}
	if _, err := s.srv.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		if isAlreadyExists(err) {
			return fmt.Errorf("add %q: %w", sheet, ErrSheetExists)
		}
		return fmt.Errorf("add sheet %q: %w", sheet, err)
	}
	if len(header) == 0 {
		return nil
	}
	return s.UpdateCells(ctx, Row(sheet, 0, len(header)-1, 1), [][]string{header})
}

func (s *SheetsStore) RenameSheet(ctx context.Context, from, to string) error {
	id, ok, err := s.sheetID(ctx, from)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("rename %q: %w", from, ErrSheetNotFound)
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{SheetId: id, Title: to},
				Fields:     "title",
			},
		}},
	}
	if _, err := s.srv.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		if isAlreadyExists(err) {
			return fmt.Errorf("rename %q to %q: %w", from, to, ErrSheetExists)
		}
		return fmt.Errorf("rename sheet %q: %w", from, err)
	}
	return nil
}

// sheetID looks title up ignoring case, as the document compares titles.
func (s *SheetsStore) sheetID(ctx context.Context, title string) (int64, bool, error) {
	doc, err := s.srv.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.sheetId", "sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return 0, false, fmt.Errorf("list sheets: %w", err)
	}
	for _, sh := range doc.Sheets {
		if sh.Properties != nil && strings.EqualFold(sh.Properties.Title, title) {
			return sh.Properties.SheetId, true, nil
		}
	}
	return 0, false, nil
}

// toValues sends empty strings as nulls so untouched cells keep their
// content, including formulas.
func toValues(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, c := range row {
		if c == "" {
			out[i] = nil
			continue
		}
		out[i] = c
	}
	return out
}

func sheetsError(rng Range, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest &&
		strings.Contains(gerr.Message, "Unable to parse range") {
		return fmt.Errorf("%s: %w", rng.A1(), ErrSheetNotFound)
	}
	return fmt.Errorf("%s: %w", rng.A1(), err)
}

func isAlreadyExists(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest &&
		strings.Contains(gerr.Message, "already exists")
}
