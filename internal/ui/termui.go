package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"sync"
	"time"

	json "github.com/bytedance/sonic"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/skalibog/signalfeed/internal/config"
	"github.com/skalibog/signalfeed/internal/dashboard"
	"github.com/skalibog/signalfeed/pkg/logger"
	"github.com/skalibog/signalfeed/pkg/models"
	"go.uber.org/zap"
)

// Стили UI
var (
	// Основные цвета
	primaryColor   = lipgloss.Color("#0077cc")
	secondaryColor = lipgloss.Color("#333333")
	errorColor     = lipgloss.Color("#cc3300")
	successColor   = lipgloss.Color("#33cc33")
	warningColor   = lipgloss.Color("#cccc00")
	mutedColor     = lipgloss.Color("#999999")
	// Главный контейнер
	appStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(primaryColor).
			Padding(0, 1).
			Align(lipgloss.Center)
	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#ffffff")).
				Background(secondaryColor).
				Padding(0, 1)
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)
	// Окно деталей сигнала
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2)
	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("#222222"))
	mutedStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	footerStyle   = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)
)

// maxLogs размер буфера панели логов
const maxLogs = 50

// Регулярное выражение для удаления ANSI-цветов
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Actions действия пользователя, которые выполняет контроллер ленты
type Actions interface {
	ToggleAutoUpdate()
	ClearFeed()
	Refresh()
	SetVisible(visible bool)
	OpenDetail(id models.SignalID)
}

// viewState все, что отображает терминальный интерфейс
type viewState struct {
	counters     dashboard.Counters
	status       dashboard.StatusIndicator
	emptyVisible bool
	cards        []dashboard.Card
	lastUpdate   time.Time
	autoUpdate   bool
	detail       *dashboard.Detail
	selected     int
	logs         []string
}

// TermUI терминальный интерфейс ленты сигналов. Реализует dashboard.Sink:
// методы только меняют состояние под мьютексом и будят программу.
type TermUI struct {
	mu      sync.RWMutex
	state   viewState
	config  config.UIConfig
	logFile string

	refresh chan struct{}
	done    chan struct{}
}

var _ dashboard.Sink = (*TermUI)(nil)

// NewTermUI создает интерфейс. logFile JSON лог, который показывается в панели логов.
func NewTermUI(cfg config.UIConfig, logFile string) *TermUI {
	ui := &TermUI{
		state: viewState{
			status:       dashboard.StatusFor(models.BotStopped),
			emptyVisible: true,
			autoUpdate:   true,
			logs:         []string{"SignalFeed запущен. Ожидание данных..."},
		},
		config:  cfg,
		logFile: logFile,
		refresh: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	// Загружаем логи из файла при запуске
	if err := ui.loadLogsFromFile(); err != nil {
		ui.state.logs = append(ui.state.logs, fmt.Sprintf("Ошибка загрузки логов: %v", err))
	}

	return ui
}

// Run запускает программу bubbletea и блокируется до выхода пользователя или отмены ctx
func (ui *TermUI) Run(ctx context.Context, actions Actions) error {
	defer close(ui.done)

	model := newBubbleModel(ui, actions)
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("ошибка запуска UI: %w", err)
	}
	return nil
}

// notify будит программу, не блокируя вызывающего
func (ui *TermUI) notify() {
	select {
	case ui.refresh <- struct{}{}:
	default:
	}
}

func (ui *TermUI) update(fn func(s *viewState)) {
	ui.mu.Lock()
	fn(&ui.state)
	ui.mu.Unlock()
	ui.notify()
}

// snapshot копия состояния для отрисовки
func (ui *TermUI) snapshot() viewState {
	ui.mu.RLock()
	defer ui.mu.RUnlock()

	s := ui.state
	s.cards = append([]dashboard.Card(nil), ui.state.cards...)
	s.logs = append([]string(nil), ui.state.logs...)
	if ui.state.detail != nil {
		d := *ui.state.detail
		s.detail = &d
	}
	return s
}

func (ui *TermUI) SetCounters(counters dashboard.Counters) {
	ui.update(func(s *viewState) { s.counters = counters })
}

func (ui *TermUI) SetBotStatus(status dashboard.StatusIndicator) {
	ui.update(func(s *viewState) { s.status = status })
}

func (ui *TermUI) ShowEmptyState(visible bool) {
	ui.update(func(s *viewState) { s.emptyVisible = visible })
}

func (ui *TermUI) ReplaceFeed(cards []dashboard.Card) {
	ui.update(func(s *viewState) {
		s.cards = append([]dashboard.Card(nil), cards...)
		s.selected = clamp(s.selected, len(s.cards))
	})
}

func (ui *TermUI) ClearNewMarkers() {
	ui.update(func(s *viewState) {
		for i := range s.cards {
			s.cards[i].New = false
		}
	})
}

func (ui *TermUI) ClearFeed() {
	ui.update(func(s *viewState) {
		s.cards = nil
		s.selected = 0
	})
}

func (ui *TermUI) SetLastUpdate(at time.Time) {
	ui.update(func(s *viewState) { s.lastUpdate = at })
}

func (ui *TermUI) SetAutoUpdate(enabled bool) {
	ui.update(func(s *viewState) { s.autoUpdate = enabled })
}

func (ui *TermUI) ShowDetail(detail dashboard.Detail) {
	ui.update(func(s *viewState) { s.detail = &detail })
}

// loadLogsFromFile перечитывает JSON лог в панель логов
func (ui *TermUI) loadLogsFromFile() error {
	if ui.logFile == "" {
		return nil
	}

	file, err := os.Open(ui.logFile)
	if err != nil {
		if os.IsNotExist(err) {
			// Файл не существует, это не ошибка
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var logs []string

	for scanner.Scan() {
		logs = append(logs, formatLogLine(scanner.Text()))
		if len(logs) > maxLogs {
			logs = logs[1:]
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	if len(logs) > 0 {
		ui.update(func(s *viewState) { s.logs = logs })
	}
	return nil
}

// reloadLogs вызывается по таймеру программы
func (ui *TermUI) reloadLogs() {
	if err := ui.loadLogsFromFile(); err != nil {
		logger.Warn("Ошибка загрузки логов", zap.Error(err))
	}
}

// formatLogLine превращает строку JSON лога zap в строку панели
func formatLogLine(line string) string {
	var zapLog map[string]interface{}
	if err := json.Unmarshal([]byte(line), &zapLog); err != nil {
		// Не удалось распарсить JSON, добавляем как есть
		return line
	}

	level, _ := zapLog["level"].(string)
	ts, _ := zapLog["ts"].(string)
	msg, _ := zapLog["msg"].(string)

	level = ansiRegex.ReplaceAllString(level, "")

	timestamp := ""
	if t, err := time.Parse("02.01.2006 - 15:04:05.999999999Z07:00", ts); err == nil {
		timestamp = t.Format("15:04:05")
	}

	formatted := fmt.Sprintf("[%s] [%s] %s", timestamp, level, msg)

	// Дополнительные поля в стабильном порядке
	keys := make([]string, 0, len(zapLog))
	for k := range zapLog {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if k != "level" && k != "ts" && k != "msg" && k != "caller" {
			formatted += fmt.Sprintf(" (%s: %v)", k, zapLog[k])
		}
	}

	return formatted
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
