package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"moodbot/activities"
	"moodbot/environment"
	"moodbot/messages"
)

func newNotifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Send the quiz notice to every registered user now",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := runNotify(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total: %d, sent: %d, failed: %d\n", report.Total, report.Sent, report.Failed)
			return nil
		},
	}
}

func runNotify(ctx context.Context) (activities.Report, error) {
	env, err := environment.Load()
	if err != nil {
		return activities.Report{}, err
	}
	loc, err := env.Main.Location()
	if err != nil {
		return activities.Report{}, err
	}
	store, closeStore, err := openStore(env.Main, env.Postgres, loc)
	if err != nil {
		return activities.Report{}, err
	}
	defer closeStore()

	// вебхук здесь не нужен, бот только отправляет
	env.Main.WebhookURL = ""
	bot, _, err := newBot(env.Main)
	if err != nil {
		return activities.Report{}, err
	}
	return activities.NewNotifier(store, messages.NewTeleSender(bot)).Broadcast(ctx), nil
}
