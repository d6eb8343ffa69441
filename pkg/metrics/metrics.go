package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus метрик сервиса
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// База данных
	DBQueriesTotal  *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec
	DBConnsOpen     prometheus.Gauge
	DBConnsInUse    prometheus.Gauge
	DBConnsIdle     prometheus.Gauge

	// Фоновые задачи
	SlotLocksSwept      prometheus.Counter
	ReversalsDispatched *prometheus.CounterVec

	// События
	EventsPublished *prometheus.CounterVec
}

// New создает и регистрирует метрики сервиса
func New(serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		DBQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_queries_total",
			Help:        "Total number of database queries",
			ConstLabels: labels,
		}, []string{"operation", "result"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation"}),

		DBConnsOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_connections_open",
			Help:        "Number of open database connections",
			ConstLabels: labels,
		}),

		DBConnsInUse: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_connections_in_use",
			Help:        "Number of database connections in use",
			ConstLabels: labels,
		}),

		DBConnsIdle: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_connections_idle",
			Help:        "Number of idle database connections",
			ConstLabels: labels,
		}),

		SlotLocksSwept: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "slot_locks_swept_total",
			Help:        "Total number of expired slot locks removed by the sweeper",
			ConstLabels: labels,
		}),

		ReversalsDispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "payment_reversals_dispatched_total",
			Help:        "Total number of payment reversal dispatch outcomes",
			ConstLabels: labels,
		}, []string{"result"}),

		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "events_published_total",
			Help:        "Total number of domain events published",
			ConstLabels: labels,
		}, []string{"type", "result"}),
	}
}

// ObserveHTTPRequest регистрирует завершённый HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveDBQuery регистрирует выполненный SQL запрос
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.DBQueriesTotal.WithLabelValues(operation, result).Inc()
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetDBConnStats обновляет gauge-метрики connection pool
func (m *Metrics) SetDBConnStats(open, inUse, idle int) {
	m.DBConnsOpen.Set(float64(open))
	m.DBConnsInUse.Set(float64(inUse))
	m.DBConnsIdle.Set(float64(idle))
}

// IncSlotLocksSwept увеличивает счётчик удалённых просроченных локов
func (m *Metrics) IncSlotLocksSwept(n int) {
	m.SlotLocksSwept.Add(float64(n))
}

// IncReversalDispatched регистрирует исход отправки возврата платежа
// result: "succeeded", "retried", "failed"
func (m *Metrics) IncReversalDispatched(result string) {
	m.ReversalsDispatched.WithLabelValues(result).Inc()
}

// IncEventPublished регистрирует публикацию доменного события
func (m *Metrics) IncEventPublished(eventType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(eventType, result).Inc()
}
