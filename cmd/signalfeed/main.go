package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/skalibog/signalfeed/internal/config"
	"github.com/skalibog/signalfeed/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "signalfeed",
	Short: "SignalFeed - терминальная лента торговых сигналов",
	Long: `SignalFeed опрашивает сервер сигналов и показывает ленту, счетчики
и статус бота в терминале. Без подкоманды запускается watch.`,
	SilenceUsage: true,
	RunE:         runWatch,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "путь к файлу конфигурации")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "подробное логирование")
}

// setup загружает конфигурацию и инициализирует логгер
func setup() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	if debug {
		cfg.Logging.Level = "debug"
	}

	if err := logger.Init(cfg.Logging.Options()); err != nil {
		return nil, fmt.Errorf("ошибка инициализации логгера: %w", err)
	}

	logger.Info("Конфигурация загружена",
		zap.String("path", cfgFile),
		zap.String("url", cfg.API.SignalsURL()),
		zap.Duration("interval", cfg.Dashboard.RefreshInterval()),
	)
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Sync()

	if err != nil {
		os.Exit(1)
	}
}
