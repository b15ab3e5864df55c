package main

import (
	"context"
	"errors"
	"os"

	"github.com/dmchugh/medlib/internal/library"
	"github.com/dmchugh/medlib/internal/services"
	"github.com/dmchugh/medlib/internal/session"
	"github.com/dmchugh/medlib/internal/shared"
	"github.com/urfave/cli/v3"
)

const version = "0.3.0"

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	client := services.NewClient(config.Server.BaseURL, nil)
	authService := services.NewAuthService(client)
	mediaService := services.NewMediaService(client)

	tokenStore := shared.NewFileTokenStore(shared.ExpandPath(config.Storage.TokenPath))
	sessionManager := session.NewManager(authService, client, tokenStore, logger)
	browser := library.NewBrowser(mediaService, logger)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Client:     client,
		Auth:       authService,
		Media:      mediaService,
		Session:    sessionManager,
		Browser:    browser,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "medlib",
		Usage:    "Browse and manage a personal media library server",
		Version:  version,
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
