package health

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SCPrime/ai-Trader-sub001/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeProber struct {
	mu    sync.Mutex
	err   error
	calls int32
}

func (f *fakeProber) Health(ctx context.Context) (*models.HealthReport, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &models.HealthReport{Status: "ok", Redis: &models.RedisHealth{Connected: true, LatencyMS: 1.2}}, nil
}

func (f *fakeProber) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeProber) callCount() int32 {
	return atomic.LoadInt32(&f.calls)
}

func TestPollerStartsInCheckingState(t *testing.T) {
	p := NewPoller(&fakeProber{}, time.Minute, testLogger())

	st := p.Status()
	assert.Equal(t, StateChecking, st.State)
	assert.Empty(t, st.LastError)
	assert.Nil(t, st.Report)
	assert.True(t, st.CheckedAt.IsZero())
}

func TestCheckTransitionsAndErrorRetention(t *testing.T) {
	prober := &fakeProber{}
	prober.setErr(fmt.Errorf("backend unreachable"))
	p := NewPoller(prober, time.Minute, testLogger())
	ctx := context.Background()

	st := p.Check(ctx)
	assert.Equal(t, StateError, st.State)
	assert.Equal(t, "backend unreachable", st.LastError)
	assert.False(t, st.CheckedAt.IsZero())

	// The error stays visible until a probe succeeds.
	assert.Equal(t, "backend unreachable", p.Status().LastError)

	prober.setErr(nil)
	st = p.Check(ctx)
	assert.Equal(t, StateHealthy, st.State)
	assert.Empty(t, st.LastError)
	require.NotNil(t, st.Report)
	assert.Equal(t, "ok", st.Report.Status)
}

func TestCheckKeepsLastGoodReportThroughFailures(t *testing.T) {
	prober := &fakeProber{}
	p := NewPoller(prober, time.Minute, testLogger())
	ctx := context.Background()

	st := p.Check(ctx)
	require.Equal(t, StateHealthy, st.State)
	require.NotNil(t, st.Report)

	prober.setErr(fmt.Errorf("timeout"))
	st = p.Check(ctx)
	assert.Equal(t, StateError, st.State)
	assert.Equal(t, "timeout", st.LastError)
	assert.NotNil(t, st.Report, "last good report should remain for display")
}

func TestDefaultIntervalApplied(t *testing.T) {
	p := NewPoller(&fakeProber{}, 0, testLogger())
	assert.Equal(t, DefaultInterval, p.interval)
}

func TestStartProbesImmediatelyThenOnTicks(t *testing.T) {
	prober := &fakeProber{}
	p := NewPoller(prober, 10*time.Millisecond, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)
	defer p.Stop()

	require.Eventually(t, func() bool { return prober.callCount() >= 3 },
		2*time.Second, 5*time.Millisecond)
	assert.Equal(t, StateHealthy, p.Status().State)
}

func TestStopHaltsPolling(t *testing.T) {
	prober := &fakeProber{}
	p := NewPoller(prober, 10*time.Millisecond, testLogger())
	p.Start(context.Background())

	require.Eventually(t, func() bool { return prober.callCount() >= 1 },
		2*time.Second, 5*time.Millisecond)
	p.Stop()

	settled := prober.callCount()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, prober.callCount(), settled+1)
}
