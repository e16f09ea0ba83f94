package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors exported on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	cyclesTotal        *prometheus.CounterVec
	cycleDuration      prometheus.Histogram
	commandsTotal      *prometheus.CounterVec
	commandDuration    *prometheus.HistogramVec
	classifierRequests *prometheus.CounterVec
	messagesSent       *prometheus.CounterVec
	sensorValue        *prometheus.GaugeVec
	switchState        *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plant_monitor_cycles_total",
			Help: "Monitoring cycles by outcome.",
		}, []string{"status"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "plant_monitor_cycle_duration_seconds",
			Help:    "Wall time of a monitoring cycle.",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34},
		}),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plant_bot_commands_total",
			Help: "Bot commands handled by command and outcome.",
		}, []string{"command", "status"}),
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "plant_bot_command_duration_seconds",
			Help:    "Bot command handling time.",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
		classifierRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plant_classifier_requests_total",
			Help: "Disease classifier calls by provider and outcome.",
		}, []string{"provider", "status"}),
		messagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plant_messages_sent_total",
			Help: "Outbound chat messages by kind and outcome.",
		}, []string{"kind", "status"}),
		sensorValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "plant_sensor_value",
			Help: "Last numeric sensor reading by sensor.",
		}, []string{"sensor"}),
		switchState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "plant_switch_on",
			Help: "1 when the switch is ON.",
		}, []string{"switch"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.cyclesTotal,
		m.cycleDuration,
		m.commandsTotal,
		m.commandDuration,
		m.classifierRequests,
		m.messagesSent,
		m.sensorValue,
		m.switchState,
	)
	return m
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) ObserveCycle(elapsed time.Duration, err error) {
	m.cyclesTotal.WithLabelValues(statusLabel(err)).Inc()
	m.cycleDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCommand(command string, elapsed time.Duration, err error) {
	m.commandsTotal.WithLabelValues(command, statusLabel(err)).Inc()
	m.commandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveClassifier(provider string, err error) {
	m.classifierRequests.WithLabelValues(provider, statusLabel(err)).Inc()
}

func (m *Metrics) ObserveMessage(kind string, err error) {
	m.messagesSent.WithLabelValues(kind, statusLabel(err)).Inc()
}

// SetSensor records value when it parses as a number; text readings are ignored.
func (m *Metrics) SetSensor(sensor, value string) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return
	}
	m.sensorValue.WithLabelValues(sensor).Set(f)
}

func (m *Metrics) SetSwitch(name string, on bool) {
	v := 0.0
	if on {
		v = 1
	}
	m.switchState.WithLabelValues(name).Set(v)
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var (
	defaultOnce sync.Once
	defaultM    *Metrics
)

// Default returns the process-wide metrics set.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultM = New()
	})
	return defaultM
}
