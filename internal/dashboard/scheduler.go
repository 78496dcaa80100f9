package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/skalibog/signalfeed/pkg/logger"
)

// Scheduler планирует повторяющиеся и отложенные задачи.
// Возвращаемая функция отменяет задачу, повторный вызов безопасен.
type Scheduler interface {
	Every(interval time.Duration, job func()) (stop func())
	After(delay time.Duration, job func()) (stop func())
}

// CronScheduler планировщик на основе robfig/cron.
// Повторяющиеся задачи работают с точностью до секунды.
type CronScheduler struct {
	cron *cron.Cron
}

// NewCronScheduler создает планировщик, логирующий через zap
func NewCronScheduler() *CronScheduler {
	return &CronScheduler{
		cron: cron.New(cron.WithLogger(cronLogger{})),
	}
}

// Start запускает планировщик
func (s *CronScheduler) Start() {
	s.cron.Start()
}

// Stop останавливает планировщик и ждет завершения запущенных задач
func (s *CronScheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Every добавляет задачу с постоянным периодом
func (s *CronScheduler) Every(interval time.Duration, job func()) func() {
	id := s.cron.Schedule(cron.Every(interval), cron.FuncJob(job))

	var once sync.Once
	return func() {
		once.Do(func() { s.cron.Remove(id) })
	}
}

// After выполняет задачу один раз через delay
func (s *CronScheduler) After(delay time.Duration, job func()) func() {
	timer := time.AfterFunc(delay, job)
	return func() { timer.Stop() }
}

// Active число активных повторяющихся задач
func (s *CronScheduler) Active() int {
	return len(s.cron.Entries())
}

// cronLogger направляет сообщения cron в zap
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.GetLogger().Sugar().Debugw("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.GetLogger().Sugar().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
