// Package bot is the Telegram command layer: it parses commands,
// invokes the store and the chat provider, and formats replies. The
// bot also implements the scheduler's Notifier for the daily push.
package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/mkarpov/notibot/internal/config"
	"github.com/mkarpov/notibot/internal/store"
	"github.com/mkarpov/notibot/pkg/openrouter"
)

// Bot wires the Telegram API to the store and the provider client.
// llm is nil when no provider key is configured; chat commands then
// reply with a configuration hint.
type Bot struct {
	api *tgbotapi.BotAPI
	db  store.Store
	llm *openrouter.Client
	cfg *config.Config
	log *zap.Logger
}

// New connects to the Telegram API.
func New(cfg *config.Config, db store.Store, llm *openrouter.Client, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{
		api: api,
		db:  db,
		llm: llm,
		cfg: cfg,
		log: log.Named("bot"),
	}, nil
}

// Username returns the bot's Telegram username.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run registers the command menu and processes updates until ctx is
// cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.setupCommands()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.log.Info("polling", zap.String("username", b.Username()))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			if upd.Message == nil || upd.Message.From == nil || !upd.Message.IsCommand() {
				continue
			}
			b.handleCommand(ctx, upd.Message)
		}
	}
}

// SendDaily implements scheduler.Notifier. In private chats the chat id
// equals the Telegram user id.
func (b *Bot) SendDaily(ctx context.Context, userID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(userID, text))
	return err
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	if err := b.db.EnsureUser(ctx, userID, b.cfg.Notify.DefaultHour); err != nil {
		b.storeError(ctx, msg, err)
		return
	}

	switch msg.Command() {
	case "start", "help":
		b.reply(msg, helpText)
	case "note_add":
		b.cmdNoteAdd(ctx, msg)
	case "note_list":
		b.cmdNoteList(ctx, msg)
	case "note_find":
		b.cmdNoteFind(ctx, msg)
	case "note_edit":
		b.cmdNoteEdit(ctx, msg)
	case "note_del":
		b.cmdNoteDel(ctx, msg)
	case "note_count":
		b.cmdNoteCount(ctx, msg)
	case "note_export":
		b.cmdNoteExport(ctx, msg)
	case "note_stats":
		b.cmdNoteStats(ctx, msg)
	case "sign":
		b.cmdSign(ctx, msg)
	case "hour":
		b.cmdHour(ctx, msg)
	case "subscribe":
		b.cmdSubscribe(ctx, msg, true)
	case "unsubscribe":
		b.cmdSubscribe(ctx, msg, false)
	case "models":
		b.cmdModels(ctx, msg)
	case "model":
		b.cmdModelSet(ctx, msg)
	case "personas":
		b.cmdPersonas(ctx, msg)
	case "persona":
		b.cmdPersonaSet(ctx, msg)
	case "ask":
		b.cmdAsk(ctx, msg, false)
	case "ask_random":
		b.cmdAsk(ctx, msg, true)
	default:
		b.reply(msg, "Unknown command. Try /help.")
	}
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	m := tgbotapi.NewMessage(msg.Chat.ID, text)
	m.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(m); err != nil {
		b.log.Warn("send reply failed", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}

// storeError maps a store failure to a user-facing message and audits it.
func (b *Bot) storeError(ctx context.Context, msg *tgbotapi.Message, err error) {
	b.log.Error("store operation failed",
		zap.String("command", msg.Command()),
		zap.Int64("user_id", msg.From.ID),
		zap.Error(err))
	b.db.RecordError(ctx, store.ErrorEntry{
		Level:   "error",
		Source:  "bot",
		Message: "store operation failed",
		UserID:  msg.From.ID,
		Command: msg.Command(),
		Details: err.Error(),
	})

	if errorIsBusy(err) {
		b.reply(msg, "The database is busy right now, try again in a moment.")
		return
	}
	b.reply(msg, "Something went wrong, try again later.")
}

func (b *Bot) setupCommands() {
	cmds := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Greeting and help"},
		tgbotapi.BotCommand{Command: "note_add", Description: "Add a note"},
		tgbotapi.BotCommand{Command: "note_list", Description: "List notes"},
		tgbotapi.BotCommand{Command: "note_find", Description: "Search notes"},
		tgbotapi.BotCommand{Command: "note_edit", Description: "Edit a note"},
		tgbotapi.BotCommand{Command: "note_del", Description: "Delete a note"},
		tgbotapi.BotCommand{Command: "note_count", Description: "How many notes"},
		tgbotapi.BotCommand{Command: "note_export", Description: "Export notes as .txt"},
		tgbotapi.BotCommand{Command: "note_stats", Description: "Notes per day"},
		tgbotapi.BotCommand{Command: "sign", Description: "Set your zodiac sign"},
		tgbotapi.BotCommand{Command: "hour", Description: "Set daily push hour"},
		tgbotapi.BotCommand{Command: "subscribe", Description: "Enable the daily push"},
		tgbotapi.BotCommand{Command: "unsubscribe", Description: "Disable the daily push"},
		tgbotapi.BotCommand{Command: "models", Description: "List chat models"},
		tgbotapi.BotCommand{Command: "model", Description: "Switch the active model"},
		tgbotapi.BotCommand{Command: "personas", Description: "List personas"},
		tgbotapi.BotCommand{Command: "persona", Description: "Pick your persona"},
		tgbotapi.BotCommand{Command: "ask", Description: "Ask the chat model"},
		tgbotapi.BotCommand{Command: "ask_random", Description: "Ask a random persona"},
	)
	if _, err := b.api.Request(cmds); err != nil {
		b.log.Warn("set command menu failed", zap.Error(err))
	}
}
