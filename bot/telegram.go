// Package bot wires a Telegram transport to the crew orchestrator. It long
// polls for updates, keeps per-chat conversation history, persists
// transcripts, and fires scheduled digests.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// WelcomeText is the fixed /start reply.
const WelcomeText = "Hello! I'm your AI assistant powered by a crew of agents. " +
	"Each specialized function is handled by a dedicated agent. How can I help you today?"

// HelpText is the fixed /help reply.
const HelpText = "Here's how to use this bot:\n\n" +
	"- Just send me any message or question\n" +
	"- For web searches, try queries like 'search for latest AI news'\n" +
	"- Use /start to see the welcome message\n" +
	"- Use /help to see this help message\n\n" +
	"Each type of request is handled by a specialized agent!"

// NotAuthorizedText is the fixed reply for chats outside the allow list.
const NotAuthorizedText = "Sorry, you are not authorized to use this bot."

const testPingText = "🤖 *Test Bot Started Successfully!* 🤖\n\n" +
	"I'm now running in test mode and listening for your messages.\n\n" +
	"You can try:\n" +
	"- Send any message to test basic responses\n" +
	"- Try 'search for latest AI news' to test web search\n" +
	"- Use /help to see available commands\n\n" +
	"Reply to this message to start testing!"

// Bot long polls Telegram and hands every text message to the Router.
type Bot struct {
	api         *tgbotapi.BotAPI
	router      *Router
	logger      *slog.Logger
	allowed     map[int64]bool
	adminChatID int64
	testMode    bool
}

// BotOption configures a Bot.
type BotOption func(*Bot)

// WithAllowedChats restricts the bot to the given chat IDs. Without it
// every chat is served.
func WithAllowedChats(ids ...int64) BotOption {
	return func(b *Bot) {
		b.allowed = make(map[int64]bool, len(ids))
		for _, id := range ids {
			b.allowed[id] = true
		}
	}
}

// WithAdminChat sets the chat that receives operational notices.
func WithAdminChat(id int64) BotOption {
	return func(b *Bot) { b.adminChatID = id }
}

// WithTestMode makes the bot announce itself to the admin chat on startup.
func WithTestMode(on bool) BotOption {
	return func(b *Bot) { b.testMode = on }
}

// WithBotLogger sets the logger.
func WithBotLogger(logger *slog.Logger) BotOption {
	return func(b *Bot) { b.logger = logger }
}

// NewBot authenticates against the Telegram API with the given token.
func NewBot(token string, router *Router, opts ...BotOption) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	api.Debug = false

	b := &Bot{api: api, router: router, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Start long polls for updates until the context is cancelled. Each update
// is handled on its own goroutine; ordering within a chat is enforced by
// the Router.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("telegram: bot started", "username", b.api.Self.UserName)
	if b.testMode {
		b.sendTestPing()
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handle(ctx, update)
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		}
	}
}

// Send delivers a plain text message to a chat. Failures are logged, not
// returned, since there is nobody upstream to report them to.
func (b *Bot) Send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Warn("telegram: failed to send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handle(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	text := update.Message.Text
	if text == "" {
		return
	}
	chatID := update.Message.Chat.ID

	if !b.allowedChat(chatID) {
		b.logger.Warn("telegram: unauthorized chat", "chat_id", chatID)
		b.Send(chatID, NotAuthorizedText)
		return
	}

	if update.Message.IsCommand() {
		if reply, ok := commandReply(update.Message.Command()); ok {
			b.Send(chatID, reply)
		}
		return
	}

	b.logger.Info("telegram: received message", "chat_id", chatID, "text", text)
	b.typing(chatID)
	b.Send(chatID, b.router.Route(ctx, chatID, text))
}

// commandReply returns the canned reply for a reserved command. Unknown
// commands get no reply at all.
func commandReply(command string) (string, bool) {
	switch command {
	case "start":
		return WelcomeText, true
	case "help":
		return HelpText, true
	default:
		return "", false
	}
}

// allowedChat reports whether a chat may use the bot. An empty allow list
// admits everyone.
func (b *Bot) allowedChat(chatID int64) bool {
	if len(b.allowed) == 0 {
		return true
	}
	return b.allowed[chatID]
}

func (b *Bot) typing(chatID int64) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Warn("telegram: failed to send chat action", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendTestPing() {
	if b.adminChatID == 0 {
		b.logger.Warn("telegram: test mode is on but no admin chat is configured")
		return
	}
	msg := tgbotapi.NewMessage(b.adminChatID, testPingText)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("telegram: failed to send test ping", "chat_id", b.adminChatID, "error", err)
		return
	}
	b.logger.Info("telegram: sent test ping", "chat_id", b.adminChatID)
}
