package pipeline

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/gyrodrive/pkg/ble/frame"
)

func TestMetricsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	corrupted := frame.Encode(frame.Reading{X: 0.5, Y: 0.5})
	corrupted[frame.OffsetChecksum] ^= 0x01
	s := (&stream{}).
		bytes(0x00, 0x01, 0x02).
		reading(0.5, 0.5).
		frame(corrupted).
		reading(0, -0.25)
	r := NewReceiver(s.reader(), nil)
	r.Observer = Observers{LogObserver{}, m}
	require.NoError(t, r.Run(context.Background()))

	require.Equal(t, 2.0, testutil.ToFloat64(m.Frames.WithLabelValues(ResultAccepted)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Frames.WithLabelValues(ResultBadChecksum)))
	require.Equal(t, 0.0, testutil.ToFloat64(m.Frames.WithLabelValues(ResultBadTag)))
	require.Equal(t, 3.0, testutil.ToFloat64(m.Discarded))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("forward")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("right")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("backward")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.Commands.WithLabelValues("stop")))
	require.Equal(t, -0.25, testutil.ToFloat64(m.Reading.WithLabelValues("y")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.Reading.WithLabelValues("x")))
}

func TestMetricsActuatorErrors(t *testing.T) {
	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	r := NewReceiver((&stream{}).reading(0, 0).reader(), &recordingActuator{err: io.ErrShortWrite})
	r.Observer = m
	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ActuatorErrors))
}

func TestMetricsRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	require.Error(t, err)
}

func TestMetricsServerHandler(t *testing.T) {
	reg := NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	srv := httptest.NewServer((&MetricsServer{Gatherer: reg}).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `gyrodrive_frames_total{result="accepted"} 0`)
	require.Contains(t, string(body), "go_goroutines")
}

func TestMetricsServerRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := (&MetricsServer{Addr: "127.0.0.1:0", Gatherer: prometheus.NewRegistry()}).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func freeAddr(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestMetricsServerStopsWithStuckScrape(t *testing.T) {
	addr := freeAddr(t)
	gathering, release := make(chan struct{}, 1), make(chan struct{})
	defer close(release)
	gatherer := prometheus.GathererFunc(func() ([]*dto.MetricFamily, error) {
		gathering <- struct{}{}
		<-release
		return nil, nil
	})
	srv := &MetricsServer{Addr: addr, Gatherer: gatherer, ShutdownTimeout: 10 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, time.Second, 5*time.Millisecond)
	go func() {
		if resp, err := http.Get("http://" + addr + "/metrics"); err == nil {
			resp.Body.Close()
		}
	}()
	<-gathering

	cancel()
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("metrics server not stopped")
	}
	_, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
	require.Error(t, err)
}
