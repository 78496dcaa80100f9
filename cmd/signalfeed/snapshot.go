package main

import (
	"fmt"

	"github.com/skalibog/signalfeed/internal/dashboard"
	"github.com/skalibog/signalfeed/internal/signalapi"
	"github.com/skalibog/signalfeed/internal/ui"
	"github.com/skalibog/signalfeed/pkg/models"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Загрузить ленту один раз и вывести ее",
	Args:  cobra.NoArgs,
	RunE:  runSnapshot,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Показать детали сигнала",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(showCmd)
}

// oneShot контроллер для разовых команд. Планировщик не запускается.
func oneShot(sink dashboard.Sink) (*dashboard.Controller, error) {
	cfg, err := setup()
	if err != nil {
		return nil, err
	}
	return dashboard.NewController(cfg.Dashboard, signalapi.NewClient(cfg.API), sink, dashboard.NewCronScheduler()), nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	sink := ui.NewTextSink(cmd.OutOrStdout())
	ctrl, err := oneShot(sink)
	if err != nil {
		return err
	}

	if err := ctrl.Load(cmd.Context()); err != nil {
		return err
	}
	return sink.RenderFeed()
}

func runShow(cmd *cobra.Command, args []string) error {
	sink := ui.NewTextSink(cmd.OutOrStdout())
	ctrl, err := oneShot(sink)
	if err != nil {
		return err
	}

	id := models.SignalID(args[0])
	found, err := ctrl.Detail(cmd.Context(), id)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(cmd.OutOrStdout(), "Сигнал %s не найден\n", id)
	}
	return nil
}
