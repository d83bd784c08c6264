package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"ticketly/api/routes"
	"ticketly/internal/notifications"
	"ticketly/internal/releases"
	"ticketly/internal/shared/config"
	"ticketly/internal/shared/database"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sessionctl",
	Short: "Inspect and materialize event sessions",
	Long:  `Preview the session dates and ticket releases of a recurrence rule, or materialize the sessions of a stored event.`,
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print session dates and release dates for a recurrence rule",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := previewOptionsFromFlags(cmd)
		if err != nil {
			return err
		}
		return renderPreview(cmd.OutOrStdout(), opts, time.Now())
	},
}

var materializeCmd = &cobra.Command{
	Use:   "materialize <event-id>",
	Short: "Create any missing sessions of an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return materialize(cmd.Context(), args[0])
	},
}

func init() {
	f := previewCmd.Flags()
	f.String("recurrence", "single", "single, multi-day or weekly")
	f.String("start", "", "first date, YYYY-MM-DD")
	f.String("end", "", "last date, YYYY-MM-DD")
	f.StringSlice("weekdays", nil, "weekdays of a weekly event, e.g. mon,wed")
	f.Int("lead-days", 20, "days before the first session the first tickets are released")
	f.Int("cohort-size", 7, "sessions released together")
	_ = previewCmd.MarkFlagRequired("start")

	rootCmd.AddCommand(previewCmd, materializeCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// materialize runs with admin rights, so the event owner is not checked
func materialize(ctx context.Context, eventID string) error {
	cfg := config.Load()
	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	publisher := notifications.NewLogPublisher()
	deps := routes.Dependencies{Config: cfg, DB: db, Publisher: publisher}
	if cfg.Queue.Enabled {
		client := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		deps.Releases = releases.NewScheduler(client)
	}

	list, err := routes.NewRouter(deps).EventService().MaterializeSessions(ctx, eventID, "")
	if err != nil {
		return err
	}
	fmt.Printf("event %s has %d sessions\n", eventID, len(list))
	return nil
}
