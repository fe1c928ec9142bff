package webapp

import (
	"fmt"
	"net/url"
	"strings"

	"uelco_jobs/internal/model"
)

// WhatsAppLink builds a wa.me deep link to the record's client with a short
// job summary pre-filled. Empty when the contact has no usable digits.
func WhatsAppLink(rec model.Record) string {
	digits := contactDigits(rec.ClientContact)
	if digits == "" {
		return ""
	}

	parts := []string{fmt.Sprintf("UELCO job update (%s)", rec.Category)}
	if rec.ServiceType != "" {
		parts = append(parts, rec.ServiceType)
	}
	if rec.Location != "" {
		parts = append(parts, rec.Location)
	}
	if d := model.FormatDate(rec.Date); d != "" {
		parts = append(parts, d)
	}
	text := strings.Join(parts, " - ")

	return fmt.Sprintf("https://wa.me/%s?text=%s", digits, url.QueryEscape(text))
}

// contactDigits strips formatting from a phone number, keeping a leading +
// out of the result as wa.me expects bare digits.
func contactDigits(contact string) string {
	var b strings.Builder
	for _, r := range contact {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
