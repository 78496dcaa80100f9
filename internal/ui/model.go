package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/skalibog/signalfeed/internal/dashboard"
	"github.com/skalibog/signalfeed/pkg/models"
)

// Сообщения для обновления UI
type refreshMsg struct{}
type logTickMsg struct{}

// bubbleModel модель для bubbletea. Состояние ленты живет в TermUI.
type bubbleModel struct {
	ui      *TermUI
	actions Actions
}

func newBubbleModel(ui *TermUI, actions Actions) bubbleModel {
	return bubbleModel{ui: ui, actions: actions}
}

// waitForRefresh ждет изменения состояния от контроллера
func (m bubbleModel) waitForRefresh() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ui.refresh:
			return refreshMsg{}
		case <-m.ui.done:
			return nil
		}
	}
}

func (m bubbleModel) logTick() tea.Cmd {
	if !m.ui.config.ShowLogs || m.ui.config.RefreshRate <= 0 {
		return nil
	}
	return tea.Tick(time.Duration(m.ui.config.RefreshRate)*time.Millisecond, func(time.Time) tea.Msg {
		return logTickMsg{}
	})
}

// Методы для bubbletea
func (m bubbleModel) Init() tea.Cmd {
	return tea.Batch(m.waitForRefresh(), m.logTick())
}

func (m bubbleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.FocusMsg:
		m.actions.SetVisible(true)

	case tea.BlurMsg:
		m.actions.SetVisible(false)

	case refreshMsg:
		return m, m.waitForRefresh()

	case logTickMsg:
		m.ui.reloadLogs()
		return m, m.logTick()
	}

	return m, nil
}

func (m bubbleModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "esc":
		m.ui.update(func(s *viewState) { s.detail = nil })
	case "up":
		m.ui.update(func(s *viewState) { s.selected = clamp(s.selected-1, len(s.cards)) })
	case "down":
		m.ui.update(func(s *viewState) { s.selected = clamp(s.selected+1, len(s.cards)) })
	case "enter":
		// Действия вызываются без блокировки UI: контроллер сам пишет в TermUI
		if id, ok := m.selectedID(); ok {
			m.actions.OpenDetail(id)
		}
	case "a":
		m.actions.ToggleAutoUpdate()
	case "c":
		m.actions.ClearFeed()
	case "r":
		m.actions.Refresh()
	}
	return nil
}

func (m bubbleModel) selectedID() (models.SignalID, bool) {
	m.ui.mu.RLock()
	defer m.ui.mu.RUnlock()

	s := m.ui.state
	if s.selected < 0 || s.selected >= len(s.cards) {
		return "", false
	}
	return s.cards[s.selected].ID, true
}

func (m bubbleModel) View() string {
	s := m.ui.snapshot()

	title := titleStyle.Render("SignalFeed - Trading Signals Dashboard")
	sections := []string{title, "", renderHeader(s)}

	if s.detail != nil {
		sections = append(sections, "", renderDetail(*s.detail))
	} else {
		sections = append(sections, "", renderFeed(s))
	}

	if m.ui.config.ShowLogs {
		sections = append(sections, "", renderLogs(s.logs, m.ui.config.LogLines))
	}

	footer := footerStyle.Render("Клавиши: ↑/↓ - навигация, Enter - детали, Esc - закрыть, A - автообновление, R - обновить, C - очистить, Q - выход")
	sections = append(sections, "", footer)

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// Вспомогательные функции
func toneColor(tone dashboard.Tone) lipgloss.Color {
	switch tone {
	case dashboard.ToneSuccess:
		return successColor
	case dashboard.ToneWarning:
		return warningColor
	default:
		return errorColor
	}
}

func statusTone(state models.BotStatus) dashboard.Tone {
	switch state {
	case models.BotRunning:
		return dashboard.ToneSuccess
	case models.BotReady:
		return dashboard.ToneWarning
	default:
		return dashboard.ToneDanger
	}
}

func badge(text string, tone dashboard.Tone) string {
	return badgeStyle.Background(toneColor(tone)).Render(text)
}

func formatLastUpdate(at time.Time) string {
	if at.IsZero() {
		return "Last update: --:--:--"
	}
	return "Last update: " + at.Format("15:04:05")
}

func formatAutoUpdate(enabled bool) string {
	if enabled {
		return "Auto Update: ON"
	}
	return "Auto Update: OFF"
}

func renderHeader(s viewState) string {
	counters := fmt.Sprintf("Всего: %d   BUY: %d   SELL: %d", s.counters.Total, s.counters.Buy, s.counters.Sell)
	status := "Бот: " + badge(s.status.Label, statusTone(s.status.State))

	line := strings.Join([]string{
		counters,
		status,
		mutedStyle.Render(formatLastUpdate(s.lastUpdate)),
		mutedStyle.Render(formatAutoUpdate(s.autoUpdate)),
	}, "   ")
	return line
}

func renderFeed(s viewState) string {
	header := sectionHeaderStyle.Render("СИГНАЛЫ")
	content := strings.Builder{}

	// Заглушка и старые карточки могут быть видны одновременно
	if s.emptyVisible {
		content.WriteString("  Сигналов пока нет\n")
	}

	for i, card := range s.cards {
		line := renderCard(card)
		if i == s.selected {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		content.WriteString(line + "\n")
	}

	return sectionStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			content.String(),
		),
	)
}

func renderCard(card dashboard.Card) string {
	parts := []string{
		badge(string(card.Position), card.Side),
		lipgloss.NewStyle().Bold(true).Render(card.Symbol),
		"Entry: " + card.Entry,
		"SL: " + card.StopLoss,
		"TP: " + card.TakeProfits,
	}
	if card.RiskReward != "" {
		parts = append(parts, "R/R: "+card.RiskReward)
	}
	if card.New {
		parts = append(parts, badge("NEW", dashboard.ToneWarning))
	}

	meta := mutedStyle.Render(fmt.Sprintf("%s | %s", card.Timestamp, card.Source))
	return strings.Join(parts, "  ") + "\n    " + meta
}

func renderDetail(d dashboard.Detail) string {
	content := strings.Builder{}

	content.WriteString(fmt.Sprintf("%s  %s\n\n", lipgloss.NewStyle().Bold(true).Render(d.Symbol), badge(string(d.Position), d.Side)))
	content.WriteString(fmt.Sprintf("Entry: %s\n", d.Entry))
	content.WriteString(fmt.Sprintf("Stop Loss: %s\n", d.StopLoss))
	for _, tp := range d.TakeProfits {
		content.WriteString(tp + "\n")
	}
	if d.RiskReward != "" {
		content.WriteString(fmt.Sprintf("R/R: %s\n", d.RiskReward))
	}
	content.WriteString(fmt.Sprintf("Источник: %s\n", d.Source))
	content.WriteString(fmt.Sprintf("Время: %s\n", d.Timestamp))

	if d.Formatted != "" {
		content.WriteString("\n" + mutedStyle.Render(d.Formatted) + "\n")
	}

	return modalStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			sectionHeaderStyle.Render("ДЕТАЛИ СИГНАЛА"),
			content.String(),
		),
	)
}

func renderLogs(logs []string, maxLines int) string {
	header := sectionHeaderStyle.Render("ЛОГИ")
	content := strings.Builder{}

	start := 0
	if maxLines > 0 && len(logs) > maxLines {
		start = len(logs) - maxLines
	}

	for _, log := range logs[start:] {
		// Выделение по уровню логирования
		if strings.Contains(log, "[ERROR]") {
			log = lipgloss.NewStyle().Foreground(errorColor).Render(log)
		} else if strings.Contains(log, "[INFO]") {
			log = lipgloss.NewStyle().Foreground(successColor).Render(log)
		} else if strings.Contains(log, "[WARN]") {
			log = lipgloss.NewStyle().Foreground(warningColor).Render(log)
		} else if strings.Contains(log, "[DEBUG]") {
			log = lipgloss.NewStyle().Foreground(lipgloss.Color("#9999ff")).Render(log)
		}

		content.WriteString("  " + log + "\n")
	}

	return sectionStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			content.String(),
		),
	)
}
