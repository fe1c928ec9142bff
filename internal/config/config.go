package config

import "time"

type Config struct {
	ServerConfig
	GoogleSheetConfig
	UploadConfig
	CardConfig
	SessionConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

type GoogleSheetConfig struct {
	SpreadsheetID     string `envconfig:"SPREADSHEET_ID" required:"true" masked:"true"`
	WorksheetID       string `envconfig:"WORKSHEET_ID" required:"true" masked:"true"`
	CredentialsBase64 string `envconfig:"CREDENTIALS_BASE64" required:"true" masked:"true"`
	PauseMs           int    `envconfig:"SHEET_PAUSE_MS" required:"false"`
}

type UploadConfig struct {
	RelayURL string `envconfig:"UPLOAD_RELAY_URL" required:"true" masked:"true"`
}

type CardConfig struct {
	// Path to the letterhead image placed at the top of job cards. Optional,
	// cards fall back to a plain title when missing.
	LetterheadPath string `envconfig:"CARD_LETTERHEAD_PATH" required:"false"`
	CompanyName    string `envconfig:"CARD_COMPANY_NAME" default:"UELCO Electrical Services"`
}

type SessionConfig struct {
	Expiration      time.Duration `envconfig:"SESSION_EXPIRATION" default:"12h"`
	CleanupInterval time.Duration `envconfig:"SESSION_CLEANUP_INTERVAL" default:"1h"`
}
