package telegram

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"chat-translator/internal/history"
	"chat-translator/internal/profile"
)

// Coordinator is the part of conversation.Coordinator the bot drives.
type Coordinator interface {
	RegisterUser(ctx context.Context, userID, targetLanguage string) (profile.UserProfile, error)
	ResolveUser(userID string) (profile.UserProfile, error)
	TranslateTurn(ctx context.Context, userID, text string) (history.SessionEntry, error)
	History(userID string) ([]history.SessionEntry, error)
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type botAPISender struct{ api *tgbotapi.BotAPI }

func (s botAPISender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return s.api.Send(c)
}

type Bot struct {
	api         *tgbotapi.BotAPI
	s           sender
	coord       Coordinator
	adminUserID int64
	pageSize    int
	reportFunc  ReportFunc
	log         *zap.Logger
}

type Options struct {
	AdminUserID     int64
	HistoryPageSize int
	Logger          *zap.Logger
}

func New(botToken string, coord Coordinator, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return newBot(botAPISender{api: api}, api, coord, opts), nil
}

func newBot(s sender, api *tgbotapi.BotAPI, coord Coordinator, opts Options) *Bot {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	pageSize := opts.HistoryPageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Bot{
		api:         api,
		s:           s,
		coord:       coord,
		adminUserID: opts.AdminUserID,
		pageSize:    pageSize,
		log:         log.Named("telegram"),
	}
}

// ReportFunc produces the usage report and delivers it to the admin, as
// plain text or as indented JSON.
type ReportFunc func(ctx context.Context, asJSON bool) error

// SetReportFunction enables the admin /report command.
func (b *Bot) SetReportFunction(f ReportFunc) {
	b.reportFunc = f
}

// Start polls updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info("bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil {
				b.handleIncomingMessage(ctx, update.Message)
			}
		}
	}
}

// SendToAdmin delivers text to the configured admin chat.
func (b *Bot) SendToAdmin(text string) error {
	if b.adminUserID == 0 {
		b.log.Warn("admin user not configured, message dropped")
		return nil
	}
	_, err := b.s.Send(tgbotapi.NewMessage(b.adminUserID, text))
	return err
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.s.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func userKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
