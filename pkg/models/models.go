package models

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
)

// Position направление сделки
type Position string

const (
	PositionBuy  Position = "BUY"
	PositionSell Position = "SELL"
)

// BotStatus состояние бота на стороне сервера
type BotStatus string

const (
	BotRunning BotStatus = "running"
	BotReady   BotStatus = "ready"
	BotStopped BotStatus = "stopped"
)

// UnmarshalJSON никогда не возвращает ошибку для значений не-строк:
// они сохраняются пустыми и отображаются как остановленный бот
func (s *BotStatus) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		*s = ""
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("некорректный bot_status: %w", err)
	}
	*s = BotStatus(raw)
	return nil
}

// SignalID идентификатор сигнала. Сервер может прислать число или строку,
// храним текстовое представление.
type SignalID string

// UnmarshalJSON принимает и число, и строку
func (id *SignalID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("некорректный id: %w", err)
		}
		*id = SignalID(s)
		return nil
	}
	if _, err := decimal.NewFromString(string(data)); err != nil {
		return fmt.Errorf("некорректный id %s", data)
	}
	*id = SignalID(data)
	return nil
}

// Price значение цены. Строки отображаются как есть, числа в нормализованном виде.
type Price struct {
	raw     string
	numeric bool
	zero    bool
}

// NewPrice создает цену из строкового значения
func NewPrice(raw string) Price {
	return Price{raw: raw}
}

// NewNumericPrice создает цену из числа
func NewNumericPrice(d decimal.Decimal) Price {
	return Price{raw: d.String(), numeric: true, zero: d.IsZero()}
}

// UnmarshalJSON принимает строку, число или null
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*p = Price{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("некорректная цена: %w", err)
		}
		*p = NewPrice(s)
	default:
		d, err := decimal.NewFromString(string(data))
		if err != nil {
			return fmt.Errorf("некорректная цена %s: %w", data, err)
		}
		*p = NewNumericPrice(d)
	}
	return nil
}

// String возвращает отображаемое значение
func (p Price) String() string {
	return p.raw
}

// Present сообщает, нужно ли показывать значение:
// null, пустая строка и числовой ноль считаются отсутствующими.
func (p Price) Present() bool {
	if p.raw == "" {
		return false
	}
	return !(p.numeric && p.zero)
}

// TakeProfits уровни тейк-профита. В ответе сервера это JSON-массив,
// закодированный в строку.
type TakeProfits []Price

// UnmarshalJSON декодирует строку с массивом. Пустая строка и null дают пустой список.
func (tp *TakeProfits) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*tp = TakeProfits{}
		return nil
	}

	encoded := data
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("некорректное поле take_profits: %w", err)
		}
		if strings.TrimSpace(s) == "" {
			*tp = TakeProfits{}
			return nil
		}
		encoded = []byte(s)
	}

	var levels []Price
	if err := json.Unmarshal(encoded, &levels); err != nil {
		return fmt.Errorf("некорректное поле take_profits %q: %w", encoded, err)
	}
	if levels == nil {
		levels = []Price{}
	}
	*tp = levels
	return nil
}

// Join объединяет уровни через запятую
func (tp TakeProfits) Join(sep string) string {
	parts := make([]string, len(tp))
	for i, level := range tp {
		parts[i] = level.String()
	}
	return strings.Join(parts, sep)
}

// Signal торговый сигнал, как его отдает сервер
type Signal struct {
	ID              SignalID    `json:"id"`
	Symbol          string      `json:"symbol"`
	Position        Position    `json:"position"`
	Entry           Price       `json:"entry"`
	StopLoss        Price       `json:"stop_loss"`
	TakeProfits     TakeProfits `json:"take_profits"`
	RiskReward      Price       `json:"risk_reward"`
	SourceChannel   string      `json:"source_channel"`
	Timestamp       string      `json:"timestamp"`
	FormattedSignal string      `json:"formatted_signal"`
}

// Snapshot ответ /api/signals
type Snapshot struct {
	TotalSignals int       `json:"total_signals"`
	BotStatus    BotStatus `json:"bot_status"`
	Signals      []Signal  `json:"signals"`
}

// Find ищет сигнал по идентификатору
func (s *Snapshot) Find(id SignalID) (*Signal, bool) {
	for i := range s.Signals {
		if s.Signals[i].ID == id {
			return &s.Signals[i], true
		}
	}
	return nil, false
}

// ParseSnapshot декодирует тело ответа
func ParseSnapshot(body []byte) (*Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, err
	}
	if snapshot.BotStatus == "" {
		snapshot.BotStatus = BotStopped
	}
	return &snapshot, nil
}
