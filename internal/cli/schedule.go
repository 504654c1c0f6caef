package cli

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"NormPeakPlot/internal/notifier"
	"NormPeakPlot/internal/pipeline"
	"NormPeakPlot/internal/scheduler"
)

var runOnStart bool

// scheduleCmd refreshes the outputs on the configured cron schedule.
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Regenerate outputs on a cron schedule",
	Long: `Schedule keeps running and regenerates the chart and peak table whenever
schedule.cron fires. When Telegram is configured, a summary is sent each time
the series gains a new observation.`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().BoolVar(&runOnStart, "now", false, "refresh once immediately on start")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}
	store, err := scheduler.NewStateStore(cfg.Schedule.StateFile)
	if err != nil {
		return err
	}

	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		sender = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	} else {
		log.Println("[INFO] telegram not configured, notifications disabled")
	}

	sched := scheduler.NewScheduler(cmd.Context(), p, sender, store)
	if sched.StartDate, err = cfg.Start(); err != nil {
		return err
	}
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		return err
	}
	if runOnStart {
		if _, err := sched.RunNow(); err != nil {
			log.Printf("[ERROR] initial refresh: %v", err)
		}
	}
	sched.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Printf("[INFO] received signal %v, shutting down...", sig)
	case <-cmd.Context().Done():
	}
	sched.Stop()
	return nil
}
