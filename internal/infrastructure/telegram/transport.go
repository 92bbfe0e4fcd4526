package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/etebarfx/remit-bot/internal/domain/models"
)

// Action is a selectable follow-up attached to a message, scoped to one
// transaction via its callback data.
type Action struct {
	Label string
	Data  string
}

// Sender is the outbound half of the transport adapter. Callers never
// assume delivery succeeded and never retry.
type Sender interface {
	SendText(chatID int64, text string) error
	// SendActions sends text with one inline button per action.
	SendActions(chatID int64, text string, actions []Action) error
	// SendReplyMenu sends text with a persistent reply keyboard, one label
	// per row.
	SendReplyMenu(chatID int64, text string, labels []string) error
	EditText(chatID int64, messageID int, text string) error
	ForwardPhoto(toChatID int64, origin models.MessageRef) error
	// AnswerCallback acknowledges a button press, optionally with alert text.
	AnswerCallback(callbackID string, text string, alert bool) error
}

// Bot adapts the Telegram API to Sender.
type Bot struct {
	api *tgbotapi.BotAPI
}

func NewBot(api *tgbotapi.BotAPI) *Bot {
	return &Bot{api: api}
}

func (b *Bot) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendActions(chatID int64, text string, actions []Action) error {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(actions))
	for _, a := range actions {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(a.Label, a.Data),
		))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendReplyMenu(chatID int64, text string, labels []string) error {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(l)))
	}

	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) EditText(chatID int64, messageID int, text string) error {
	_, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
	return err
}

func (b *Bot) ForwardPhoto(toChatID int64, origin models.MessageRef) error {
	_, err := b.api.Send(tgbotapi.NewForward(toChatID, origin.ChatID, origin.MessageID))
	return err
}

func (b *Bot) AnswerCallback(callbackID string, text string, alert bool) error {
	cb := tgbotapi.NewCallback(callbackID, text)
	cb.ShowAlert = alert
	_, err := b.api.Request(cb)
	return err
}
