package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category is the job type partition. It is fixed at record creation and
// decides which of the optional fields carry meaning.
type Category string

const (
	CategorySales       Category = "Sales & Install"
	CategoryTransformer Category = "Transformer Servicing"
	CategoryCableFault  Category = "Cable Faults"
	CategoryNote        Category = "General Note"
)

// Categories returns every known category in display order.
func Categories() []Category {
	return []Category{CategorySales, CategoryTransformer, CategoryCableFault, CategoryNote}
}

// ParseCategory matches a stored category value, tolerating surrounding
// whitespace. Unknown values report ok=false.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// ServiceSuggestions lists the service types offered per category in the add
// form. The lists are suggestions only, the field stays free text.
func ServiceSuggestions(c Category) []string {
	switch c {
	case CategorySales:
		return []string{"New Installation", "Rewiring", "Solar Install", "COC Inspection", "Emergency Callout"}
	case CategoryTransformer:
		return []string{"Oil Change", "Rewind", "Testing", "General Service"}
	case CategoryCableFault:
		return []string{"Fault Location", "Jointing", "Cable Replacement"}
	default:
		return nil
	}
}

// Worksheet column headers. The order of Columns() is the order rows are
// written to the sheet.
const (
	ColRecordID           = "Record_ID"
	ColCategory           = "Category"
	ColDate               = "Date"
	ColClientName         = "Client_Name"
	ColClientContact      = "Client_Contact"
	ColLocation           = "Location"
	ColServiceType        = "Service_Type"
	ColTechnician         = "Technician"
	ColQuoteAmount        = "Quote_Amount"
	ColPlaceReceived      = "Place_Received"
	ColDateReceived       = "Date_Received"
	ColDateSentToVendor   = "Date_Sent_To_Vendor"
	ColDateBackFromVendor = "Date_Back_From_Vendor"
	ColDateClientPickup   = "Date_Client_Pickup"
	ColPhotoLink          = "Photo_Link"
	ColOneDriveLink       = "OneDrive_Link"
	ColNotes              = "Notes"
	ColCompleted          = "Completed"
	ColInvoiced           = "Invoiced"
)

var columns = []string{
	ColRecordID,
	ColCategory,
	ColDate,
	ColClientName,
	ColClientContact,
	ColLocation,
	ColServiceType,
	ColTechnician,
	ColQuoteAmount,
	ColPlaceReceived,
	ColDateReceived,
	ColDateSentToVendor,
	ColDateBackFromVendor,
	ColDateClientPickup,
	ColPhotoLink,
	ColOneDriveLink,
	ColNotes,
	ColCompleted,
	ColInvoiced,
}

// Columns returns the full worksheet schema in write order.
func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// Record is one row of the shared job table.
type Record struct {
	ID                 string    `json:"id"`
	Category           Category  `json:"category"`
	Date               time.Time `json:"date"`
	ClientName         string    `json:"client_name"`
	ClientContact      string    `json:"client_contact"`
	Location           string    `json:"location"`
	ServiceType        string    `json:"service_type"`
	Technician         string    `json:"technician"`
	QuoteAmount        string    `json:"quote_amount"`
	PlaceReceived      string    `json:"place_received"`
	DateReceived       time.Time `json:"date_received"`
	DateSentToVendor   time.Time `json:"date_sent_to_vendor"`
	DateBackFromVendor time.Time `json:"date_back_from_vendor"`
	DateClientPickup   time.Time `json:"date_client_pickup"`
	PhotoLink          string    `json:"photo_link"`
	OneDriveLink       string    `json:"onedrive_link"`
	Notes              string    `json:"notes"`
	Completed          bool      `json:"completed"`
	Invoiced           bool      `json:"invoiced"`
}

// NewRecord creates an empty record of the given category with a fresh
// synthetic identifier. The identifier is the record's identity across store
// round-trips; row position is never used as identity.
func NewRecord(category Category) Record {
	return Record{
		ID:       uuid.NewString(),
		Category: category,
	}
}

// Value returns the canonical string form of one column: dates as YYYY-MM-DD
// (empty for unset), booleans as TRUE/FALSE, everything else as stored text.
func (r *Record) Value(col string) string {
	switch col {
	case ColRecordID:
		return r.ID
	case ColCategory:
		return string(r.Category)
	case ColDate:
		return FormatDate(r.Date)
	case ColClientName:
		return r.ClientName
	case ColClientContact:
		return r.ClientContact
	case ColLocation:
		return r.Location
	case ColServiceType:
		return r.ServiceType
	case ColTechnician:
		return r.Technician
	case ColQuoteAmount:
		return r.QuoteAmount
	case ColPlaceReceived:
		return r.PlaceReceived
	case ColDateReceived:
		return FormatDate(r.DateReceived)
	case ColDateSentToVendor:
		return FormatDate(r.DateSentToVendor)
	case ColDateBackFromVendor:
		return FormatDate(r.DateBackFromVendor)
	case ColDateClientPickup:
		return FormatDate(r.DateClientPickup)
	case ColPhotoLink:
		return r.PhotoLink
	case ColOneDriveLink:
		return r.OneDriveLink
	case ColNotes:
		return r.Notes
	case ColCompleted:
		return FormatBool(r.Completed)
	case ColInvoiced:
		return FormatBool(r.Invoiced)
	}
	return ""
}

// SetValue writes one column from raw text, applying the lenient coercion
// rules: unparseable dates become unset, booleans default to false, text
// placeholders like "nan" collapse to empty. Unknown columns report false.
func (r *Record) SetValue(col, raw string) bool {
	switch col {
	case ColRecordID:
		r.ID = CleanText(raw)
	case ColCategory:
		if c, ok := ParseCategory(raw); ok {
			r.Category = c
		}
	case ColDate:
		r.Date = ParseDate(raw)
	case ColClientName:
		r.ClientName = CleanText(raw)
	case ColClientContact:
		r.ClientContact = CleanText(raw)
	case ColLocation:
		r.Location = CleanText(raw)
	case ColServiceType:
		r.ServiceType = CleanText(raw)
	case ColTechnician:
		r.Technician = CleanText(raw)
	case ColQuoteAmount:
		r.QuoteAmount = CleanText(raw)
	case ColPlaceReceived:
		r.PlaceReceived = CleanText(raw)
	case ColDateReceived:
		r.DateReceived = ParseDate(raw)
	case ColDateSentToVendor:
		r.DateSentToVendor = ParseDate(raw)
	case ColDateBackFromVendor:
		r.DateBackFromVendor = ParseDate(raw)
	case ColDateClientPickup:
		r.DateClientPickup = ParseDate(raw)
	case ColPhotoLink:
		r.PhotoLink = CleanText(raw)
	case ColOneDriveLink:
		r.OneDriveLink = CleanText(raw)
	case ColNotes:
		r.Notes = CleanText(raw)
	case ColCompleted:
		r.Completed = ParseBool(raw)
	case ColInvoiced:
		r.Invoiced = ParseBool(raw)
	default:
		return false
	}
	return true
}

// Empty reports whether every column of the record, identity aside, is blank.
// Such rows are ghost data from the sheet and get dropped on load.
func (r *Record) Empty() bool {
	for _, col := range columns {
		if col == ColRecordID {
			continue
		}
		if col == ColCompleted || col == ColInvoiced {
			if r.Value(col) == "TRUE" {
				return false
			}
			continue
		}
		if r.Value(col) != "" {
			return false
		}
	}
	return true
}

const dateLayout = "2006-01-02"

// dateLayouts are tried in order when parsing. Technicians paste dates in
// whatever shape their phone produces.
var dateLayouts = []string{
	dateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2006/01/02",
	"2 January 2006",
	"Jan 2, 2006",
}

// ParseDate parses leniently. Unparseable or placeholder input yields the
// zero time, never an error.
func ParseDate(s string) time.Time {
	s = CleanText(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// FormatDate renders day precision, empty for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// ParseBool accepts the spellings Sheets and the form produce. Anything else,
// including empty and placeholder values, is false.
func ParseBool(s string) bool {
	switch strings.ToLower(CleanText(s)) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}

func FormatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// textPlaceholders are the "no value" spellings that show up in sheet cells
// once a spreadsheet has been round-tripped through enough tools.
var textPlaceholders = map[string]struct{}{
	"nan":   {},
	"nat":   {},
	"none":  {},
	"null":  {},
	"<nil>": {},
	"#n/a":  {},
	"n/a":   {},
}

// CleanText trims whitespace and collapses placeholder values to the empty
// string.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	if _, ok := textPlaceholders[strings.ToLower(s)]; ok {
		return ""
	}
	return s
}
