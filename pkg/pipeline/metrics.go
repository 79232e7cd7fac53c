package pipeline

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robotalks/gyrodrive/pkg/ble/frame"
	fx "github.com/robotalks/gyrodrive/pkg/framework"
	"github.com/robotalks/gyrodrive/pkg/motion"
)

// Values of the result label of gyrodrive_frames_total.
const (
	ResultAccepted    = "accepted"
	ResultBadTag      = "bad_tag"
	ResultBadChecksum = "bad_checksum"
)

// NewRegistry creates a Prometheus registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Metrics is an Observer exporting Prometheus metrics.
type Metrics struct {
	Frames         *prometheus.CounterVec
	Discarded      prometheus.Counter
	Commands       *prometheus.CounterVec
	ActuatorErrors prometheus.Counter
	Reading        *prometheus.GaugeVec
}

// NewMetrics creates and registers the metrics.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gyrodrive_frames_total",
			Help: "Assembled frames by validation result.",
		}, []string{"result"}),
		Discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gyrodrive_discarded_bytes_total",
			Help: "Bytes dropped while hunting for a frame tag.",
		}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gyrodrive_commands_total",
			Help: "Motion commands asserted by accepted frames.",
		}, []string{"command"}),
		ActuatorErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gyrodrive_actuator_errors_total",
			Help: "Frames the actuators failed to apply.",
		}),
		Reading: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gyrodrive_reading",
			Help: "Last accepted gyro reading by axis.",
		}, []string{"axis"}),
	}
	for _, c := range []prometheus.Collector{m.Frames, m.Discarded, m.Commands, m.ActuatorErrors, m.Reading} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	for _, result := range []string{ResultAccepted, ResultBadTag, ResultBadChecksum} {
		m.Frames.WithLabelValues(result)
	}
	for _, cmd := range motion.AllCommands {
		m.Commands.WithLabelValues(cmd.String())
	}
	return m, nil
}

// FrameAccepted implements Observer.
func (m *Metrics) FrameAccepted(out Outcome) {
	m.Frames.WithLabelValues(ResultAccepted).Inc()
	for _, cmd := range out.Commands.List() {
		m.Commands.WithLabelValues(cmd.String()).Inc()
	}
	m.Reading.WithLabelValues("x").Set(float64(out.Reading.X))
	m.Reading.WithLabelValues("y").Set(float64(out.Reading.Y))
	m.Reading.WithLabelValues("z").Set(float64(out.Reading.Z))
}

// FrameRejected implements Observer.
func (m *Metrics) FrameRejected(err *frame.RejectError) {
	result := ResultBadChecksum
	if errors.Is(err, frame.ErrBadTag) {
		result = ResultBadTag
	}
	m.Frames.WithLabelValues(result).Inc()
}

// ActuateFailed implements Observer.
func (m *Metrics) ActuateFailed(Outcome) {
	m.ActuatorErrors.Inc()
}

// BytesDiscarded implements Observer.
func (m *Metrics) BytesDiscarded(n uint64) {
	m.Discarded.Add(float64(n))
}

// MetricsServer serves /metrics over HTTP.
type MetricsServer struct {
	Addr     string
	Gatherer prometheus.Gatherer
	// ShutdownTimeout bounds the wait for in-flight scrapes, default 1s.
	ShutdownTimeout time.Duration
}

// Name implements framework.Named.
func (s *MetricsServer) Name() string {
	return "metrics"
}

// Handler returns the HTTP handler of the metrics.
func (s *MetricsServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Run implements framework.Runnable.
func (s *MetricsServer) Run(ctx context.Context) error {
	server := &http.Server{Addr: s.Addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	glog.Infof("serving metrics on %s", s.Addr)
	return fx.RunWithContextCancel(ctx, func() {
		timeout := s.ShutdownTimeout
		if timeout <= 0 {
			timeout = time.Second
		}
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := server.Shutdown(sctx); err != nil {
			glog.Warningf("metrics server shutdown: %v", err)
		}
	}, func() error {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}
