package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const helpText = `Send me any text and I will translate it into your language.

/lang <code> - set the target language (for example: /lang es)
/history - show your latest translations
/help - show this message`

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	userID := userKey(msg.From.ID)
	b.log.Debug("incoming message", zap.String("user_id", userID), zap.Int("len", len(msg.Text)))

	entry, err := b.coord.TranslateTurn(ctx, userID, msg.Text)
	if err != nil {
		b.sendMessage(msg.Chat.ID, describeError(err))
		return
	}
	b.sendMessage(msg.Chat.ID, entry.TranslatedText)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID := userKey(msg.From.ID)

	switch msg.Command() {
	case "start":
		if p, err := b.coord.ResolveUser(userID); err == nil {
			b.sendMessage(msg.Chat.ID, fmt.Sprintf("Welcome back! Your target language is %s.\n\n%s", p.TargetLanguage, helpText))
			return
		}
		b.sendMessage(msg.Chat.ID, "Welcome to the Conversational Translator!\nChoose a target language with /lang <code>, for example /lang es.")
	case "help":
		b.sendMessage(msg.Chat.ID, helpText)
	case "lang":
		code := strings.TrimSpace(msg.CommandArguments())
		if code == "" {
			b.sendMessage(msg.Chat.ID, "Usage: /lang <code>")
			return
		}
		p, err := b.coord.RegisterUser(ctx, userID, code)
		if err != nil {
			b.sendMessage(msg.Chat.ID, describeError(err))
			return
		}
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("Target language set to %s.", p.TargetLanguage))
	case "history":
		entries, err := b.coord.History(userID)
		if err != nil {
			b.sendMessage(msg.Chat.ID, describeError(err))
			return
		}
		b.sendMessage(msg.Chat.ID, formatHistory(entries, b.pageSize))
	case "report":
		b.handleReportCommand(ctx, msg)
	default:
		b.sendMessage(msg.Chat.ID, "Unknown command.\n\n"+helpText)
	}
}

func (b *Bot) handleReportCommand(ctx context.Context, msg *tgbotapi.Message) {
	if b.adminUserID == 0 || msg.From.ID != b.adminUserID {
		b.sendMessage(msg.Chat.ID, "This command is available to the administrator only.")
		return
	}
	if b.reportFunc == nil {
		b.sendMessage(msg.Chat.ID, "Reports are not configured.")
		return
	}
	var asJSON bool
	switch arg := strings.ToLower(strings.TrimSpace(msg.CommandArguments())); arg {
	case "":
	case "json":
		asJSON = true
	default:
		b.sendMessage(msg.Chat.ID, "Usage: /report [json]")
		return
	}
	if err := b.reportFunc(ctx, asJSON); err != nil {
		b.log.Error("report generation failed", zap.Error(err))
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("Report generation failed: %v", err))
	}
}
