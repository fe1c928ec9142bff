package domain

import "context"

type Uploader interface {
	// Upload sends file bytes to the relay and returns a shareable link, or
	// the empty string on any failure. Failures never surface as errors.
	Upload(ctx context.Context, data []byte, filename, mimeType string) string
}
