package dashboard

import (
	"fmt"

	"github.com/skalibog/signalfeed/pkg/models"
)

// Statistics считает счетчики по снимку. Total берется из ответа сервера,
// он может отличаться от длины списка.
func Statistics(snapshot *models.Snapshot) Counters {
	counters := Counters{Total: snapshot.TotalSignals}
	for _, signal := range snapshot.Signals {
		switch signal.Position {
		case models.PositionBuy:
			counters.Buy++
		case models.PositionSell:
			counters.Sell++
		}
	}
	return counters
}

// StatusFor сопоставляет статус бота с индикатором.
// Неизвестные и пустые значения отображаются как остановленный бот.
func StatusFor(status models.BotStatus) StatusIndicator {
	switch status {
	case models.BotRunning:
		return StatusIndicator{State: models.BotRunning, Label: "Running"}
	case models.BotReady:
		return StatusIndicator{State: models.BotReady, Label: "Ready"}
	default:
		return StatusIndicator{State: models.BotStopped, Label: "Stopped"}
	}
}

func sideTone(position models.Position) Tone {
	if position == models.PositionBuy {
		return ToneSuccess
	}
	return ToneDanger
}

func optional(p models.Price) string {
	if !p.Present() {
		return ""
	}
	return p.String()
}

// BuildCard формирует карточку ленты
func BuildCard(signal models.Signal, isNew bool) Card {
	return Card{
		ID:          signal.ID,
		Symbol:      signal.Symbol,
		Position:    signal.Position,
		Side:        sideTone(signal.Position),
		New:         isNew,
		Entry:       signal.Entry.String(),
		StopLoss:    signal.StopLoss.String(),
		TakeProfits: signal.TakeProfits.Join(", "),
		RiskReward:  optional(signal.RiskReward),
		Timestamp:   signal.Timestamp,
		Source:      signal.SourceChannel,
	}
}

// BuildDetail формирует содержимое окна деталей
func BuildDetail(signal models.Signal) Detail {
	levels := make([]string, len(signal.TakeProfits))
	for i, tp := range signal.TakeProfits {
		levels[i] = fmt.Sprintf("TP%d: %s", i+1, tp)
	}

	return Detail{
		ID:          signal.ID,
		Symbol:      signal.Symbol,
		Position:    signal.Position,
		Side:        sideTone(signal.Position),
		Entry:       signal.Entry.String(),
		StopLoss:    signal.StopLoss.String(),
		TakeProfits: levels,
		RiskReward:  optional(signal.RiskReward),
		Source:      signal.SourceChannel,
		Timestamp:   signal.Timestamp,
		Formatted:   signal.FormattedSignal,
	}
}
