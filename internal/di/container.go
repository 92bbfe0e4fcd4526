package di

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/etebarfx/remit-bot/internal/config"
	"github.com/etebarfx/remit-bot/internal/infrastructure/database/repositories"
	"github.com/etebarfx/remit-bot/internal/infrastructure/telegram"
	"github.com/etebarfx/remit-bot/internal/notify"
	"github.com/etebarfx/remit-bot/internal/session"
	"github.com/etebarfx/remit-bot/internal/usecases/interactor"
)

type Container struct {
	Handler   *telegram.Handler
	Lifecycle *interactor.Lifecycle
	Catalogue *interactor.Catalogue
}

// NewContainer creates a new Container instance.
func NewContainer(db *pgxpool.Pool, cfg *config.Config, api *tgbotapi.BotAPI) (*Container, error) {
	operators, err := cfg.Telegram.Operators()
	if err != nil {
		return nil, err
	}

	rate, err := cfg.Pricing.Rate()
	if err != nil {
		return nil, fmt.Errorf("invalid EXCHANGE_RATE: %w", err)
	}
	threshold, err := cfg.Pricing.Threshold()
	if err != nil {
		return nil, fmt.Errorf("invalid FEE_THRESHOLD: %w", err)
	}
	surcharge, err := cfg.Pricing.Surcharge()
	if err != nil {
		return nil, fmt.Errorf("invalid FEE_AMOUNT: %w", err)
	}

	transactionRepository := repositories.NewTransactionRepositoryImpl(db)
	accountRepository := repositories.NewAccountRepositoryImpl(db)

	sender := telegram.NewBot(api)
	notifier := notify.NewNotifier(sender, operators)

	lifecycle := interactor.NewLifecycle(transactionRepository, accountRepository, notifier, operators)
	catalogue := interactor.NewCatalogue(accountRepository, operators)
	calculator := interactor.NewQuoteCalculator(rate, threshold, surcharge)
	sessions := session.NewTracker()

	handler := telegram.NewHandler(api, sender, lifecycle, catalogue, calculator, sessions, cfg.Pricing)

	return &Container{
		Handler:   handler,
		Lifecycle: lifecycle,
		Catalogue: catalogue,
	}, nil
}
