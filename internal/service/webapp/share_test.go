package webapp

import (
	"strings"
	"testing"
	"time"

	"uelco_jobs/internal/model"
)

func TestWhatsAppLink(t *testing.T) {
	rec := model.NewRecord(model.CategoryCableFault)
	rec.ClientContact = "+27 (82) 555-0001"
	rec.ServiceType = "Jointing"
	rec.Location = "Main Rd"
	rec.Date = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	link := WhatsAppLink(rec)
	if !strings.HasPrefix(link, "https://wa.me/27825550001?text=") {
		t.Errorf("link = %q", link)
	}
	for _, want := range []string{"Jointing", "Main+Rd", "2024-06-01"} {
		if !strings.Contains(link, want) {
			t.Errorf("link missing %q: %s", want, link)
		}
	}
}

func TestWhatsAppLinkNoContact(t *testing.T) {
	rec := model.NewRecord(model.CategorySales)
	rec.ClientContact = "ask at reception"
	if link := WhatsAppLink(rec); link != "" {
		t.Errorf("link = %q, want empty without digits", link)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Cable Faults", "Cable_Faults"},
		{"Sales & Install", "Sales___Install"},
		{"photo (1).jpg", "photo_1.jpg"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
