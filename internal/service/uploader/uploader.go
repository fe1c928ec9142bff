package uploader

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Service posts file contents to the upload relay, which forwards them to
// cloud storage and answers with a shareable link. Every failure mode (bad
// status, bad JSON, error result) collapses to an empty link; the record that
// owns the attachment is saved either way.
type Service struct {
	RelayURL string

	client *http.Client
	logger *zap.Logger
}

type relayResponse struct {
	Result string `json:"result"`
	Link   string `json:"link"`
	Error  string `json:"error"`
}

func NewService(relayURL string, logger *zap.Logger) *Service {
	return &Service{
		RelayURL: relayURL,
		client:   &http.Client{Timeout: 60 * time.Second},
		logger:   logger,
	}
}

// Upload sends the file as a url-encoded form with fields filename, mimetype
// and data (base64). Returns the link on success, empty string otherwise.
func (s *Service) Upload(ctx context.Context, data []byte, filename, mimeType string) string {
	form := url.Values{}
	form.Set("filename", filename)
	form.Set("mimetype", mimeType)
	form.Set("data", base64.StdEncoding.EncodeToString(data))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.RelayURL, strings.NewReader(form.Encode()))
	if err != nil {
		s.logger.Error("error building upload request", zap.Error(err))
		return ""
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("error posting to upload relay", zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Error("upload relay returned bad status",
			zap.Int("status", resp.StatusCode), zap.String("filename", filename))
		return ""
	}

	var body relayResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		s.logger.Error("error decoding relay response", zap.Error(err))
		return ""
	}
	if body.Result != "success" {
		s.logger.Error("upload relay reported failure",
			zap.String("result", body.Result), zap.String("relay_error", body.Error))
		return ""
	}

	return body.Link
}
