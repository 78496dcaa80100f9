package dashboard

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skalibog/signalfeed/pkg/models"
)

// sinkState состояние, накопленное recordingSink
type sinkState struct {
	counters     Counters
	status       StatusIndicator
	emptyVisible bool
	cards        []Card
	replaceCalls int
	markerClears int
	feedClears   int
	lastUpdate   time.Time
	updates      int
	autoUpdate   []bool
	details      []Detail
}

// recordingSink запоминает все вызовы
type recordingSink struct {
	mu    sync.Mutex
	state sinkState
}

func (s *recordingSink) SetCounters(c Counters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.counters = c
}

func (s *recordingSink) SetBotStatus(st StatusIndicator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.status = st
}

func (s *recordingSink) ShowEmptyState(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.emptyVisible = visible
}

func (s *recordingSink) ReplaceFeed(cards []Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.cards = append([]Card(nil), cards...)
	s.state.replaceCalls++
}

func (s *recordingSink) ClearNewMarkers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.cards {
		s.state.cards[i].New = false
	}
	s.state.markerClears++
}

func (s *recordingSink) ClearFeed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.cards = nil
	s.state.feedClears++
}

func (s *recordingSink) SetLastUpdate(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.lastUpdate = at
	s.state.updates++
}

func (s *recordingSink) SetAutoUpdate(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.autoUpdate = append(s.state.autoUpdate, enabled)
}

func (s *recordingSink) ShowDetail(d Detail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.details = append(s.state.details, d)
}

// get возвращает копию состояния
func (s *recordingSink) get() sinkState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.cards = append([]Card(nil), s.state.cards...)
	st.autoUpdate = append([]bool(nil), s.state.autoUpdate...)
	st.details = append([]Detail(nil), s.state.details...)
	return st
}

func cardIDs(cards []Card) []models.SignalID {
	ids := make([]models.SignalID, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

func newCount(cards []Card) int {
	n := 0
	for _, c := range cards {
		if c.New {
			n++
		}
	}
	return n
}

// manualScheduler срабатывает только по команде теста
type manualScheduler struct {
	mu      sync.Mutex
	next    int
	every   map[int]func()
	delayed []func()
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{every: make(map[int]func())}
}

func (m *manualScheduler) Every(_ time.Duration, job func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next
	m.next++
	m.every[id] = job
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.every, id)
	}
}

func (m *manualScheduler) After(_ time.Duration, job func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delayed = append(m.delayed, job)
	return func() {}
}

// tick срабатывают все активные повторяющиеся задачи
func (m *manualScheduler) tick() {
	m.mu.Lock()
	jobs := make([]func(), 0, len(m.every))
	for _, job := range m.every {
		jobs = append(jobs, job)
	}
	m.mu.Unlock()

	for _, job := range jobs {
		job()
	}
}

// fireDelayed выполняет все отложенные задачи
func (m *manualScheduler) fireDelayed() {
	m.mu.Lock()
	jobs := m.delayed
	m.delayed = nil
	m.mu.Unlock()

	for _, job := range jobs {
		job()
	}
}

// fireFirst выполняет только самую раннюю отложенную задачу
func (m *manualScheduler) fireFirst() {
	m.mu.Lock()
	if len(m.delayed) == 0 {
		m.mu.Unlock()
		return
	}
	job := m.delayed[0]
	m.delayed = m.delayed[1:]
	m.mu.Unlock()

	job()
}

func (m *manualScheduler) active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.every)
}

func (m *manualScheduler) pendingDelayed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.delayed)
}

// stubFetcher отдает заданные ответы по очереди, последний повторяется
type stubFetcher struct {
	mu        sync.Mutex
	responses []stubResponse
	gate      chan struct{}
	calls     atomic.Int32
}

type stubResponse struct {
	snapshot *models.Snapshot
	err      error
}

func (f *stubFetcher) push(snapshot *models.Snapshot, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, stubResponse{snapshot, err})
}

// hold задерживает следующие запросы до закрытия возвращенного канала
func (f *stubFetcher) hold() chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
	return f.gate
}

func (f *stubFetcher) FetchSnapshot(ctx context.Context) (*models.Snapshot, error) {
	f.calls.Add(1)

	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) == 0 {
		return &models.Snapshot{BotStatus: models.BotStopped}, nil
	}
	r := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return r.snapshot, r.err
}

type recordingReporter struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingReporter) Report(message string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *recordingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func signal(id int, position models.Position) models.Signal {
	return models.Signal{
		ID:            models.SignalID(fmt.Sprint(id)),
		Symbol:        fmt.Sprintf("SYM%d", id),
		Position:      position,
		Entry:         models.NewPrice("1.2345"),
		StopLoss:      models.NewPrice("1.2000"),
		TakeProfits:   models.TakeProfits{models.NewPrice("1.25"), models.NewPrice("1.26")},
		SourceChannel: "channel",
		Timestamp:     "2025-08-07 10:00:00",
	}
}

func snapshotOf(total int, status models.BotStatus, signals ...models.Signal) *models.Snapshot {
	return &models.Snapshot{TotalSignals: total, BotStatus: status, Signals: signals}
}
