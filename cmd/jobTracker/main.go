package main

import (
	"context"
	"net/http"

	"uelco_jobs/internal/config"
	"uelco_jobs/internal/service/jobcard"
	"uelco_jobs/internal/service/session"
	"uelco_jobs/internal/service/sheet"
	"uelco_jobs/internal/service/uploader"
	"uelco_jobs/internal/service/webapp"
	pkg_config "uelco_jobs/pkg/config"
	"uelco_jobs/pkg/masker"
	"uelco_jobs/pkg/zaplogger"

	"go.uber.org/zap"
)

func main() {
	logger, err := zaplogger.New()
	if err != nil {
		panic(err)
	}

	cfg := config.Config{}
	if err := pkg_config.LoadConfigs(&cfg); err != nil {
		logger.Fatal("error loading configs", zap.Error(err))
	}

	if err := masker.LogConfigs(logger, &cfg); err != nil {
		logger.Fatal("error logging configs", zap.Error(err))
	}

	ctx := context.Background()

	sheetService, err := sheet.NewService(
		ctx,
		cfg.CredentialsBase64,
		cfg.SpreadsheetID,
		cfg.WorksheetID,
		cfg.PauseMs,
		logger,
	)
	if err != nil {
		logger.Fatal("error creating sheet service", zap.Error(err))
	}

	uploadService := uploader.NewService(cfg.RelayURL, logger)
	renderer := jobcard.NewRenderer(cfg.CompanyName, cfg.LetterheadPath)
	sessions := session.NewManager(sheetService, cfg.Expiration, cfg.CleanupInterval, logger)

	app := webapp.New(sessions, uploadService, renderer, logger)

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, app.Router()); err != nil {
		logger.Fatal("error running server", zap.Error(err))
	}
}
