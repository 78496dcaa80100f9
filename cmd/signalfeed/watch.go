package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/skalibog/signalfeed/internal/config"
	"github.com/skalibog/signalfeed/internal/dashboard"
	"github.com/skalibog/signalfeed/internal/metrics"
	"github.com/skalibog/signalfeed/internal/signalapi"
	"github.com/skalibog/signalfeed/internal/ui"
	"github.com/skalibog/signalfeed/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Запустить терминальную ленту сигналов",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
		server := startMetricsServer(cfg.Metrics, reg)
		defer shutdownServer(server)
	}

	sched := dashboard.NewCronScheduler()
	sched.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		sched.Stop(stopCtx)
	}()

	term := ui.NewTermUI(cfg.UI, cfg.Logging.JSONFile)
	ctrl := dashboard.NewController(cfg.Dashboard, signalapi.NewClient(cfg.API), term, sched,
		dashboard.WithMetrics(reg),
	)

	// Контроллер живет, пока открыт интерфейс
	ctrlCtx, cancelCtrl := context.WithCancel(ctx)
	ctrlDone := make(chan error, 1)
	go func() { ctrlDone <- ctrl.Run(ctrlCtx) }()

	uiErr := term.Run(ctx, ctrl)

	cancelCtrl()
	if err := <-ctrlDone; err != nil {
		logger.Error("Ошибка контроллера ленты", zap.Error(err))
	}

	logger.Info("Завершение работы")
	return uiErr
}

func startMetricsServer(cfg config.MetricsConfig, reg *metrics.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, reg.Handler())

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Метрики доступны", zap.String("listen", cfg.Listen), zap.String("path", cfg.Path))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Ошибка сервера метрик", zap.Error(err))
		}
	}()

	return server
}

func shutdownServer(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("Ошибка остановки сервера метрик", zap.Error(err))
	}
}
