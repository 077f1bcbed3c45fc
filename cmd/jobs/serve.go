package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kartevonmorgen/kvmflows/internal/scheduler"
	subdomain "github.com/kartevonmorgen/kvmflows/internal/subscriptions/domain"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the cron daemon",
	Long:  "Schedules the sync and notification jobs and runs until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		s := scheduler.New(rt.log)
		jobs := []scheduler.Job{
			{Name: "sync_all", Cron: rt.cfg.Crons.SyncAll, Run: func(ctx context.Context) error {
				_, err := rt.sync.SyncAll(ctx)
				return err
			}},
			{Name: "sync_recent", Cron: rt.cfg.Crons.SyncRecent, Run: func(ctx context.Context) error {
				_, err := rt.sync.SyncRecent(ctx)
				return err
			}},
			{Name: "notify_daily", Cron: rt.cfg.Crons.NotifyDaily, Run: notifyJob(rt, subdomain.IntervalDaily)},
			{Name: "notify_weekly", Cron: rt.cfg.Crons.NotifyWeekly, Run: notifyJob(rt, subdomain.IntervalWeekly)},
			{Name: "notify_monthly", Cron: rt.cfg.Crons.NotifyMonthly, Run: notifyJob(rt, subdomain.IntervalMonthly)},
		}
		for _, j := range jobs {
			if err := s.Add(j); err != nil {
				return err
			}
		}

		var metricsSrv *http.Server
		if addr := viper.GetString("metrics_addr"); addr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			metricsSrv = &http.Server{Addr: addr, Handler: mux}
			go func() {
				if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					rt.log.Error().Err(err).Str("addr", addr).Msg("metrics listener failed")
				}
			}()
			rt.log.Info().Str("addr", addr).Msg("metrics listener started")
		}

		s.Start()
		rt.log.Info().Int("jobs", s.Jobs()).Msg("job scheduler started")

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Stop(ctx); err != nil {
			rt.log.Error().Err(err).Msg("scheduler stop")
		}
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(ctx)
		}
		rt.log.Info().Msg("job scheduler stopped")
		return nil
	},
}

func notifyJob(rt *runtime, interval string) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := rt.notifier.Send(ctx, interval)
		return err
	}
}

func init() {
	serveCmd.Flags().String("metrics-addr", ":9090", "listen address for Prometheus metrics, empty disables")
	viper.BindPFlag("metrics_addr", serveCmd.Flags().Lookup("metrics-addr"))
	rootCmd.AddCommand(serveCmd)
}
