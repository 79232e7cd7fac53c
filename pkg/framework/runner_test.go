package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testCloser struct {
	closed chan struct{}
}

func (c *testCloser) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
	return nil
}

func TestRunnerWaitAggregates(t *testing.T) {
	errA, errB := errors.New("a"), errors.New("b")
	r := NewRunner().Go(
		RunFunc(func(context.Context) error { return errA }),
		NamedRun("b", RunFunc(func(context.Context) error { return errB })),
		RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	)
	err := r.Wait()
	require.Error(t, err)
	require.True(t, errors.Is(err, errA))
	require.True(t, errors.Is(err, errB))
	require.Len(t, r.Runners, 3)
}

func TestRunnerFirstStopCancelsOthers(t *testing.T) {
	started := make(chan struct{})
	r := NewRunner().Go(
		RunFunc(func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		}),
		RunFunc(func(context.Context) error {
			<-started
			return nil
		}),
	)
	require.NoError(t, r.Wait())
}

func TestRunnerParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunnerWith(ctx).Go(RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	cancel()
	require.NoError(t, r.Wait())
}

func TestNamedRun(t *testing.T) {
	named := NamedRun("receiver", RunFunc(func(context.Context) error { return nil }))
	require.Equal(t, "receiver", named.(Named).Name())
	require.NoError(t, named.Run(context.Background()))
}

func TestRunWithContextCloser(t *testing.T) {
	closer := &testCloser{closed: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := RunWithContextCloser(ctx, closer, func() error {
		<-closer.closed
		return errors.New("closed")
	})
	require.Equal(t, context.Canceled, err)
}

func TestRunWithContextCloserClosesOnExit(t *testing.T) {
	closer := &testCloser{closed: make(chan struct{})}
	err := RunWithContextCloser(context.Background(), closer, func() error { return nil })
	require.NoError(t, err)
	select {
	case <-closer.closed:
	default:
		t.Fatal("closer not closed")
	}
}

func TestRunWithContext(t *testing.T) {
	require.NoError(t, RunWithContext(context.Background(), func() error { return nil }))
}
