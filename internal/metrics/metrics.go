package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry метрики работы ленты. Все методы допускают nil-получатель.
type Registry struct {
	*prometheus.Registry

	polls          *prometheus.CounterVec
	feedRebuilds   prometheus.Counter
	newSignals     prometheus.Counter
	detailRequests *prometheus.CounterVec
	knownSignals   prometheus.Gauge
}

// NewRegistry создает реестр и регистрирует метрики
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,
		polls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalfeed_polls_total",
				Help: "Total number of signal polls by result",
			},
			[]string{"result"},
		),
		feedRebuilds: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "signalfeed_feed_rebuilds_total",
				Help: "Total number of full feed rebuilds",
			},
		),
		newSignals: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "signalfeed_new_signals_total",
				Help: "Total number of previously unseen signals",
			},
		),
		detailRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalfeed_detail_requests_total",
				Help: "Total number of detail view requests by result",
			},
			[]string{"result"},
		),
		knownSignals: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "signalfeed_known_signals",
				Help: "Number of signal ids in the known set",
			},
		),
	}

	reg.MustRegister(r.polls)
	reg.MustRegister(r.feedRebuilds)
	reg.MustRegister(r.newSignals)
	reg.MustRegister(r.detailRequests)
	reg.MustRegister(r.knownSignals)

	return r
}

// RecordPoll учитывает результат опроса: "ok" или код ошибки
func (r *Registry) RecordPoll(result string) {
	if r == nil {
		return
	}
	r.polls.WithLabelValues(result).Inc()
}

// RecordRebuild учитывает перестроение ленты и число новых сигналов
func (r *Registry) RecordRebuild(newCount int) {
	if r == nil {
		return
	}
	r.feedRebuilds.Inc()
	r.newSignals.Add(float64(newCount))
}

// RecordDetail учитывает запрос детального просмотра: "shown", "missing" или код ошибки
func (r *Registry) RecordDetail(result string) {
	if r == nil {
		return
	}
	r.detailRequests.WithLabelValues(result).Inc()
}

// SetKnownSignals размер множества известных id
func (r *Registry) SetKnownSignals(n int) {
	if r == nil {
		return
	}
	r.knownSignals.Set(float64(n))
}

// Handler HTTP обработчик для экспорта метрик
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}
