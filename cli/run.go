package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	tele "gopkg.in/telebot.v4"

	"moodbot/activities"
	"moodbot/catalog"
	"moodbot/environment"
	"moodbot/handlers"
	"moodbot/messages"
	"moodbot/server"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot and the quiz scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context())
		},
	}
}

func newBot(env environment.MainEnvironment) (*tele.Bot, *tele.Webhook, error) {
	settings := tele.Settings{
		Token: env.Token,
		OnError: func(err error, c tele.Context) {
			event := log.Error().Err(err)
			if c != nil && c.Sender() != nil {
				event = event.Int64("user_id", c.Sender().ID)
			}
			event.Msg("Update handling failed")
		},
	}

	var webhook *tele.Webhook
	if env.UseWebhook() {
		// Listen пустой: обновления принимает наш gin роутер
		webhook = &tele.Webhook{
			Endpoint:    &tele.WebhookEndpoint{PublicURL: env.WebhookURL},
			SecretToken: env.WebhookSecret,
		}
		settings.Poller = webhook
	} else {
		settings.Poller = &tele.LongPoller{Timeout: 10 * time.Second}
	}

	bot, err := tele.NewBot(settings)
	if err != nil {
		return nil, nil, fmt.Errorf("create bot: %w", err)
	}
	return bot, webhook, nil
}

func runBot(ctx context.Context) error {
	env, err := environment.Load()
	if err != nil {
		return err
	}
	loc, err := env.Main.Location()
	if err != nil {
		return err
	}
	slots, err := activities.ParseSlots(env.Main.QuizSlots)
	if err != nil {
		return err
	}
	cat := catalog.LoadOrDefault(env.Main.CatalogFile)
	webhookPath := "/"
	if env.Main.UseWebhook() {
		if webhookPath, err = server.WebhookPath(env.Main.WebhookURL); err != nil {
			return err
		}
	}

	store, closeStore, err := openStore(env.Main, env.Postgres, loc)
	if err != nil {
		return err
	}
	defer closeStore()
	sess, closeSessions := openSessions(env.Main, env.Redis)
	defer closeSessions()

	bot, webhook, err := newBot(env.Main)
	if err != nil {
		return err
	}
	sender := messages.NewTeleSender(bot)

	conversations := handlers.NewConversationHandler(store, sess, cat, sender, loc)
	conversations.Register(bot)
	notifier := activities.NewNotifier(store, sender)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	scheduler := cron.New(cron.WithLocation(loc))
	if err := activities.Schedule(scheduler, slots, func() { notifier.Broadcast(gctx) }); err != nil {
		return err
	}
	scheduler.Start()
	g.Go(func() error {
		<-gctx.Done()
		<-scheduler.Stop().Done()
		log.Info().Msg("Scheduler stopped")
		return nil
	})

	g.Go(func() error {
		log.Info().Str("bot", bot.Me.Username).Bool("webhook", webhook != nil).Msg("Bot started")
		bot.Start()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		bot.Stop()
		log.Info().Msg("Bot stopped")
		return nil
	})

	if webhook != nil {
		router := server.NewRouter(webhook, webhookPath)
		g.Go(func() error {
			return server.Serve(gctx, ":"+strconv.Itoa(env.Main.Port), router)
		})
	}

	return g.Wait()
}
