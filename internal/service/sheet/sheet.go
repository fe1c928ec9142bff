package sheet

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"uelco_jobs/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Service reads and writes the shared job worksheet. It implements
// domain.RecordStore: Load pulls the whole sheet and normalizes it to the
// fixed schema, Save replaces the whole sheet. The Sheets API is rate
// limited, so calls go through a pause limiter.
type Service struct {
	SpreadsheetID string
	WorksheetID   string
	SheetName     string
	PauseMs       int

	srv       *sheets.Service
	logger    *zap.Logger
	limiterMu sync.Mutex
	lastCall  time.Time
}

// NewService builds the Sheets client from base64-encoded service account
// credentials and resolves the worksheet name from its numeric ID.
func NewService(ctx context.Context, base64Creds, spreadsheetID, worksheetID string, pauseMs int, logger *zap.Logger) (*Service, error) {
	credBytes, err := base64.StdEncoding.DecodeString(base64Creds)
	if err != nil {
		return nil, fmt.Errorf("cannot decode credentials from base64: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, credBytes, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("cannot build credentials from JSON: %w", err)
	}
	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("cannot initialize Google Sheets service: %w", err)
	}

	s := &Service{
		SpreadsheetID: spreadsheetID,
		WorksheetID:   worksheetID,
		PauseMs:       pauseMs,
		srv:           srv,
		logger:        logger,
		lastCall:      time.Now(),
	}

	if err := s.fetchSheetName(ctx); err != nil {
		return nil, fmt.Errorf("cannot resolve worksheet name: %w", err)
	}
	return s, nil
}

func (s *Service) fetchSheetName(ctx context.Context) error {
	s.wait()

	resp, err := s.srv.Spreadsheets.Get(s.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("error fetching spreadsheet info: %w", err)
	}
	for _, sh := range resp.Sheets {
		if fmt.Sprint(sh.Properties.SheetId) == s.WorksheetID {
			s.SheetName = sh.Properties.Title
			return nil
		}
	}
	return fmt.Errorf("worksheet with ID %s not found", s.WorksheetID)
}

// wait enforces the pause between API calls.
func (s *Service) wait() {
	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()
	elapsed := time.Since(s.lastCall)
	pause := time.Duration(s.PauseMs) * time.Millisecond
	if elapsed < pause {
		time.Sleep(pause - elapsed)
	}
	s.lastCall = time.Now()
}

// Load fetches the whole worksheet. Row 1 is the header row; data rows are
// mapped by header name, fully-empty rows are dropped, missing columns fall
// back to their defaults, and rows without a record ID get one assigned.
func (s *Service) Load(ctx context.Context) ([]model.Record, error) {
	s.wait()

	resp, err := s.srv.Spreadsheets.Values.Get(s.SpreadsheetID, s.SheetName).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("error reading worksheet: %w", err)
	}
	if len(resp.Values) == 0 {
		return []model.Record{}, nil
	}

	headers := make([]string, len(resp.Values[0]))
	for i, h := range resp.Values[0] {
		headers[i] = strings.TrimSpace(fmt.Sprint(h))
	}

	records := make([]model.Record, 0, len(resp.Values)-1)
	for _, row := range resp.Values[1:] {
		rec, ok := rowToRecord(row, headers)
		if !ok {
			continue
		}
		records = append(records, rec)
	}

	s.logger.Debug("worksheet loaded", zap.Int("records", len(records)))
	return records, nil
}

// Save clears the worksheet and writes the header row plus every record.
// This is a wholesale replace; there is no partial update path. The clear and
// the write are two API calls, so a failure between them can leave the remote
// sheet empty until the next sync: the local table and dirty flag survive the
// error, and a user-initiated retry rewrites the full content.
func (s *Service) Save(ctx context.Context, records []model.Record) error {
	s.wait()

	_, err := s.srv.Spreadsheets.Values.
		Clear(s.SpreadsheetID, s.SheetName, &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("error clearing worksheet: %w", err)
	}

	cols := model.Columns()
	values := make([][]interface{}, 0, len(records)+1)
	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	values = append(values, header)
	for i := range records {
		values = append(values, recordToRow(&records[i], cols))
	}

	s.wait()
	rangeStr := fmt.Sprintf("%s!A1", s.SheetName)
	_, err = s.srv.Spreadsheets.Values.
		Update(s.SpreadsheetID, rangeStr, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("error writing worksheet: %w", err)
	}

	s.logger.Debug("worksheet saved", zap.Int("records", len(records)))
	return nil
}

// rowToRecord maps one sheet row onto the fixed schema. Columns the sheet
// does not carry keep their defaults (empty text, unset dates, false flags).
// Fully-empty rows are dropped; rows without an ID get one assigned, and rows
// whose category cell is blank or unrecognized fall back to General Note so
// every loaded record belongs to some category view.
func rowToRecord(row []interface{}, headers []string) (model.Record, bool) {
	var rec model.Record
	for i, header := range headers {
		if i >= len(row) {
			break
		}
		rec.SetValue(header, fmt.Sprint(row[i]))
	}
	if rec.Empty() {
		return model.Record{}, false
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if _, ok := model.ParseCategory(string(rec.Category)); !ok {
		rec.Category = model.CategoryNote
	}
	return rec, true
}

func recordToRow(rec *model.Record, cols []string) []interface{} {
	row := make([]interface{}, len(cols))
	for i, c := range cols {
		row[i] = rec.Value(c)
	}
	return row
}
