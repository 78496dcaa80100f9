package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/skalibog/signalfeed/internal/config"
	"github.com/skalibog/signalfeed/internal/core"
	"github.com/skalibog/signalfeed/internal/metrics"
	"github.com/skalibog/signalfeed/pkg/logger"
	"github.com/skalibog/signalfeed/pkg/models"
	"go.uber.org/zap"
)

// Fetcher источник снимков ленты
type Fetcher interface {
	FetchSnapshot(ctx context.Context) (*models.Snapshot, error)
}

// Option настройка контроллера
type Option func(*Controller)

// WithReporter задает канал уведомления об ошибках
func WithReporter(r Reporter) Option {
	return func(c *Controller) { c.reporter = r }
}

// WithMetrics включает учет метрик
func WithMetrics(r *metrics.Registry) Option {
	return func(c *Controller) { c.metrics = r }
}

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller управляет обновлением ленты. Все состояние меняется только
// в цикле событий Run; публичные действия ставят события в очередь.
type Controller struct {
	fetcher  Fetcher
	sink     Sink
	sched    Scheduler
	reporter Reporter
	metrics  *metrics.Registry
	now      func() time.Time

	refreshInterval time.Duration
	markerDelay     time.Duration

	feed       *Feed
	autoUpdate bool
	stopPoll   func()
	visible    bool
	running    bool

	runCtx context.Context
	events chan func()
	done   chan struct{}
}

// NewController создает контроллер. Автообновление включено с момента запуска Run.
func NewController(cfg config.DashboardConfig, fetcher Fetcher, sink Sink, sched Scheduler, opts ...Option) *Controller {
	c := &Controller{
		fetcher:         fetcher,
		sink:            sink,
		sched:           sched,
		reporter:        LogReporter{},
		now:             time.Now,
		refreshInterval: cfg.RefreshInterval(),
		markerDelay:     cfg.NewMarkerDelay(),
		feed:            NewFeed(sink),
		autoUpdate:      true,
		visible:         true,
		runCtx:          context.Background(),
		events:          make(chan func(), 64),
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run запускает автообновление, выполняет первую загрузку и обрабатывает
// события до отмены ctx. Повторный запуск не поддерживается.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)

	c.runCtx = ctx
	c.running = true

	c.sink.SetAutoUpdate(c.autoUpdate)
	c.startAutoUpdate()
	c.load()

	logger.Info("Контроллер ленты запущен", zap.Duration("interval", c.refreshInterval))

	for {
		select {
		case <-ctx.Done():
			c.stopAutoUpdate()
			logger.Info("Контроллер ленты остановлен")
			return nil
		case event := <-c.events:
			event()
		}
	}
}

// ToggleAutoUpdate переключает автообновление
func (c *Controller) ToggleAutoUpdate() {
	c.post(c.toggleAutoUpdate)
}

// ClearFeed очищает ленту и множество известных сигналов
func (c *Controller) ClearFeed() {
	c.post(func() {
		c.feed.Clear()
		c.metrics.SetKnownSignals(0)
	})
}

// Refresh разовая загрузка вне расписания
func (c *Controller) Refresh() {
	c.post(c.load)
}

// SetVisible сообщает о видимости интерфейса. Переход из скрытого
// состояния в видимое запускает разовую загрузку.
func (c *Controller) SetVisible(visible bool) {
	c.post(func() { c.setVisible(visible) })
}

// OpenDetail загружает свежий снимок и показывает детали сигнала.
// Если сигнала уже нет в ответе, ничего не происходит.
func (c *Controller) OpenDetail(id models.SignalID) {
	c.post(func() {
		ctx := c.runCtx
		go func() {
			snapshot, err := c.fetcher.FetchSnapshot(ctx)
			c.post(func() { c.applyDetail(id, snapshot, err) })
		}()
	})
}

// Load синхронно загружает и применяет один снимок.
// Нельзя вызывать одновременно с Run.
func (c *Controller) Load(ctx context.Context) error {
	snapshot, err := c.fetcher.FetchSnapshot(ctx)
	c.applyLoad(snapshot, err)
	return err
}

// Detail синхронно показывает детали сигнала. Возвращает false, если сигнал не найден.
// Нельзя вызывать одновременно с Run.
func (c *Controller) Detail(ctx context.Context, id models.SignalID) (bool, error) {
	snapshot, err := c.fetcher.FetchSnapshot(ctx)
	return c.applyDetail(id, snapshot, err), err
}

// post ставит событие в очередь цикла
func (c *Controller) post(event func()) {
	select {
	case c.events <- event:
	case <-c.done:
	}
}

func (c *Controller) startAutoUpdate() {
	c.stopAutoUpdate()

	if c.autoUpdate {
		c.stopPoll = c.sched.Every(c.refreshInterval, func() {
			c.post(c.load)
		})
	}
}

func (c *Controller) stopAutoUpdate() {
	if c.stopPoll != nil {
		c.stopPoll()
		c.stopPoll = nil
	}
}

func (c *Controller) toggleAutoUpdate() {
	c.autoUpdate = !c.autoUpdate
	c.sink.SetAutoUpdate(c.autoUpdate)

	if c.autoUpdate {
		c.startAutoUpdate()
	} else {
		c.stopAutoUpdate()
	}

	logger.Info("Автообновление переключено", zap.Bool("enabled", c.autoUpdate))
}

func (c *Controller) setVisible(visible bool) {
	if visible && !c.visible {
		logger.Debug("Интерфейс снова виден, синхронизация")
		c.load()
	}
	c.visible = visible
}

// load запускает загрузку в отдельной горутине, результат возвращается в цикл
func (c *Controller) load() {
	ctx := c.runCtx
	go func() {
		snapshot, err := c.fetcher.FetchSnapshot(ctx)
		c.post(func() { c.applyLoad(snapshot, err) })
	}()
}

func (c *Controller) applyLoad(snapshot *models.Snapshot, err error) {
	if err != nil {
		c.metrics.RecordPoll(errorCode(err))
		logger.Error("Ошибка загрузки сигналов", zap.Error(err))
		c.reporter.Report("Не удалось загрузить сигналы", err)
		return
	}

	c.sink.SetCounters(Statistics(snapshot))
	c.sink.SetBotStatus(StatusFor(snapshot.BotStatus))

	newIDs, rebuilt := c.feed.Update(snapshot.Signals)
	if rebuilt {
		c.metrics.RecordRebuild(len(newIDs))
		logger.Info("Новые сигналы", zap.Int("count", len(newIDs)))

		// Таймеры независимы: следующий ребилд не отменяет предыдущий
		if c.running {
			c.sched.After(c.markerDelay, func() {
				c.post(c.sink.ClearNewMarkers)
			})
		}
	}

	c.sink.SetLastUpdate(c.now())
	c.metrics.RecordPoll("ok")
	c.metrics.SetKnownSignals(c.feed.Len())
}

func (c *Controller) applyDetail(id models.SignalID, snapshot *models.Snapshot, err error) bool {
	if err != nil {
		c.metrics.RecordDetail(errorCode(err))
		logger.Error("Ошибка загрузки деталей сигнала", zap.String("id", string(id)), zap.Error(err))
		c.reporter.Report("Не удалось загрузить детали сигнала", err)
		return false
	}

	signal, ok := snapshot.Find(id)
	if !ok {
		c.metrics.RecordDetail("missing")
		logger.Debug("Сигнал не найден", zap.String("id", string(id)))
		return false
	}

	c.metrics.RecordDetail("shown")
	c.sink.ShowDetail(BuildDetail(*signal))
	return true
}

func errorCode(err error) string {
	var e *core.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "UNKNOWN"
}
