package dashboard

import (
	"time"

	"github.com/skalibog/signalfeed/pkg/models"
)

// Tone цветовой акцент элемента
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneDanger  Tone = "danger"
	ToneWarning Tone = "warning"
)

// Counters счетчики в шапке
type Counters struct {
	Total int
	Buy   int
	Sell  int
}

// StatusIndicator отображение статуса бота
type StatusIndicator struct {
	State models.BotStatus // running, ready или stopped
	Label string
}

// Card карточка сигнала в ленте
type Card struct {
	ID          models.SignalID
	Symbol      string
	Position    models.Position
	Side        Tone
	New         bool
	Entry       string
	StopLoss    string
	TakeProfits string
	RiskReward  string // пусто, если не задано
	Timestamp   string
	Source      string
}

// Detail содержимое окна с деталями сигнала
type Detail struct {
	ID          models.SignalID
	Symbol      string
	Position    models.Position
	Side        Tone
	Entry       string
	StopLoss    string
	TakeProfits []string // "TP1: ...", "TP2: ..."
	RiskReward  string
	Source      string
	Timestamp   string
	Formatted   string
}

// Sink принимает все изменения отображения. Контроллер вызывает методы
// только из своего цикла событий.
type Sink interface {
	SetCounters(counters Counters)
	SetBotStatus(status StatusIndicator)
	ShowEmptyState(visible bool)
	// ReplaceFeed полностью заменяет содержимое ленты
	ReplaceFeed(cards []Card)
	// ClearNewMarkers снимает отметку NEW со всех отмеченных карточек
	ClearNewMarkers()
	ClearFeed()
	SetLastUpdate(at time.Time)
	SetAutoUpdate(enabled bool)
	ShowDetail(detail Detail)
}
