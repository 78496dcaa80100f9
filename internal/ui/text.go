package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/skalibog/signalfeed/internal/dashboard"
)

// TextSink накапливает состояние ленты и печатает его одним блоком.
// Используется командами snapshot и show.
type TextSink struct {
	mu       sync.Mutex
	out      io.Writer
	renderer *lipgloss.Renderer
	state    viewState
	details  []dashboard.Detail
}

var _ dashboard.Sink = (*TextSink)(nil)

// NewTextSink создает sink. Цвета включаются, только если out терминал.
func NewTextSink(out io.Writer) *TextSink {
	return &TextSink{
		out:      out,
		renderer: lipgloss.NewRenderer(out),
		state:    viewState{autoUpdate: true},
	}
}

func (t *TextSink) SetCounters(counters dashboard.Counters) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.counters = counters
}

func (t *TextSink) SetBotStatus(status dashboard.StatusIndicator) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.status = status
}

func (t *TextSink) ShowEmptyState(visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.emptyVisible = visible
}

func (t *TextSink) ReplaceFeed(cards []dashboard.Card) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.cards = append([]dashboard.Card(nil), cards...)
}

func (t *TextSink) ClearNewMarkers() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.state.cards {
		t.state.cards[i].New = false
	}
}

func (t *TextSink) ClearFeed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.cards = nil
}

func (t *TextSink) SetLastUpdate(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.lastUpdate = at
}

func (t *TextSink) SetAutoUpdate(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.autoUpdate = enabled
}

// ShowDetail печатает детали сразу
func (t *TextSink) ShowDetail(detail dashboard.Detail) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.details = append(t.details, detail)
	t.writeDetail(detail)
}

// RenderFeed печатает счетчики, статус и ленту
func (t *TextSink) RenderFeed() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state
	bold := t.renderer.NewStyle().Bold(true)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", bold.Render("SignalFeed"))
	fmt.Fprintf(&b, "Всего: %d   BUY: %d   SELL: %d\n", s.counters.Total, s.counters.Buy, s.counters.Sell)
	fmt.Fprintf(&b, "Бот: %s\n", t.tone(s.status.Label, statusTone(s.status.State)))
	fmt.Fprintf(&b, "%s\n\n", formatLastUpdate(s.lastUpdate))

	if s.emptyVisible {
		b.WriteString("Сигналов пока нет\n")
	}

	for _, card := range s.cards {
		fmt.Fprintf(&b, "%s %s  Entry: %s  SL: %s  TP: %s",
			t.tone(fmt.Sprintf("%-4s", card.Position), card.Side), bold.Render(card.Symbol), card.Entry, card.StopLoss, card.TakeProfits)
		if card.RiskReward != "" {
			fmt.Fprintf(&b, "  R/R: %s", card.RiskReward)
		}
		if card.New {
			b.WriteString("  " + t.tone("NEW", dashboard.ToneWarning))
		}
		fmt.Fprintf(&b, "\n      %s | %s | id %s\n", card.Timestamp, card.Source, card.ID)
	}

	_, err := io.WriteString(t.out, b.String())
	return err
}

// Details показанные детали
func (t *TextSink) Details() []dashboard.Detail {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]dashboard.Detail(nil), t.details...)
}

func (t *TextSink) writeDetail(d dashboard.Detail) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", t.renderer.NewStyle().Bold(true).Render(d.Symbol), t.tone(string(d.Position), d.Side))
	fmt.Fprintf(&b, "Entry: %s\n", d.Entry)
	fmt.Fprintf(&b, "Stop Loss: %s\n", d.StopLoss)
	for _, tp := range d.TakeProfits {
		b.WriteString(tp + "\n")
	}
	if d.RiskReward != "" {
		fmt.Fprintf(&b, "R/R: %s\n", d.RiskReward)
	}
	fmt.Fprintf(&b, "Источник: %s\n", d.Source)
	fmt.Fprintf(&b, "Время: %s\n", d.Timestamp)
	if d.Formatted != "" {
		fmt.Fprintf(&b, "\n%s\n", d.Formatted)
	}

	_, _ = io.WriteString(t.out, b.String())
}

func (t *TextSink) tone(text string, tone dashboard.Tone) string {
	return t.renderer.NewStyle().Foreground(toneColor(tone)).Render(text)
}
