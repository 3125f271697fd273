package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"clima/internal/chat"
	"clima/internal/communicators"
	"clima/internal/gateway"
	"clima/internal/session"

	tele "gopkg.in/telebot.v3"
)

// Telegram caps messages at 4096 characters.
const maxMessageLen = 4000

func init() {
	communicators.Register(&Adapter{})
}

// Adapter runs the chat as a Telegram bot, one session per chat.
type Adapter struct {
	bot      *tele.Bot
	gw       *gateway.Gateway
	sessions *session.Store
	log      *slog.Logger
}

func (a *Adapter) ID() string {
	return "telegram"
}

// Start begins long-polling for messages.
func (a *Adapter) Start(ctx context.Context, gw *gateway.Gateway) error {
	cfg := gw.Config()
	a.log = gw.Logger().With("communicator", a.ID())
	if cfg.TelegramToken == "" {
		a.log.Info("disabled: TELEGRAM_BOT_TOKEN not set")
		return nil
	}

	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.TelegramToken,
		Poller:  &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: a.onError,
	})
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}

	a.bot = b
	a.gw = gw
	a.sessions = session.NewStore(cfg.SessionMax, cfg.SessionTTL.Std(), gw.NewService)
	a.setupHandlers()

	go func() {
		<-ctx.Done()
		a.log.Info("shutting down")
		a.bot.Stop()
	}()

	a.log.Info("bot started", "username", a.bot.Me.Username)
	a.bot.Start()
	return nil
}

func (a *Adapter) setupHandlers() {
	a.bot.Handle("/start", func(c tele.Context) error {
		return c.Send("👋 " + chat.Welcome)
	})

	reset := func(c tele.Context) error {
		a.sessions.Reset(chatKey(c.Chat().ID))
		return c.Send("🧹 Conversa limpa.")
	}
	a.bot.Handle("/limpar", reset)
	a.bot.Handle("/clear", reset)

	a.bot.Handle("/status", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return c.Send(gateway.FormatStatus(a.gw.Prober().Check(ctx)))
	})

	a.bot.Handle(tele.OnText, a.handleMessage)
}

func (a *Adapter) handleMessage(c tele.Context) error {
	id := chatKey(c.Chat().ID)
	_ = c.Notify(tele.Typing)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	reply := a.sessions.Get(id).Send(ctx, c.Text())
	a.log.Debug("turn", "chat", id, "in_chars", len(c.Text()), "out_chars", len(reply))

	for _, part := range splitMessage(reply, maxMessageLen) {
		if _, err := a.bot.Send(c.Chat(), part); err != nil {
			return err
		}
	}
	return nil
}

func (a *Adapter) onError(err error, _ tele.Context) {
	a.log.Error("handler failed", "err", err)
}

func chatKey(id int64) string {
	return "tg:" + strconv.FormatInt(id, 10)
}

// splitMessage cuts text into parts of at most limit bytes, preferring line
// breaks and never splitting a rune.
func splitMessage(text string, limit int) []string {
	var parts []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		parts = append(parts, text[:cut])
		text = strings.TrimPrefix(text[cut:], "\n")
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}
