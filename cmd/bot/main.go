package main

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/etebarfx/remit-bot/internal/app"
	"github.com/etebarfx/remit-bot/internal/config"
	"github.com/etebarfx/remit-bot/internal/di"
	"github.com/etebarfx/remit-bot/internal/errors"
	"github.com/etebarfx/remit-bot/internal/infrastructure/database"
	"github.com/etebarfx/remit-bot/internal/infrastructure/database/db_client"
	"github.com/etebarfx/remit-bot/pkg/log"
)

const (
	appName = "remit-bot"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Init(appName, log.WithConsoleLogger())
	logger := log.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := database.RunMigrations(cfg.PostgreSQL.DSN(), cfg.PostgreSQL.MigrationsPath); err != nil {
		logger.Fatal().Err(err).Msg(errors.ErrorFailedToRunMigrations)
	}

	pgClient := db_client.NewPGClient(cfg.PostgreSQL)
	db, err := pgClient.Connect()
	if err != nil {
		logger.Fatal().Err(err).Msg(errors.ErrorFailedToConnectToTheDatabase)
	}
	defer db.Close()

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to authorize the bot")
	}
	logger.Info().Str("account", api.Self.UserName).Msg("bot authorized")

	container, err := di.NewContainer(db, cfg, api)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build the application container")
	}

	go container.Handler.Run(ctx)

	router := app.NewOpsRouter(db)
	service := app.NewService(cfg)
	service.Run(ctx, router)
}
