package app

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-scheduling/internal/config"
)

type countingPurger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPurger) PurgeExpiredSchedules(context.Context) (int, error) {
	p.calls.Add(1)
	return 2, p.err
}

func TestRunJanitorPurgesUntilCancelled(t *testing.T) {
	p := &countingPurger{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		RunJanitor(ctx, p, 5*time.Millisecond, zerolog.Nop())
		close(done)
	}()

	require.Eventually(t, func() bool { return p.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestPurgeOnceLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	p := &countingPurger{err: errors.New("disk full")}

	purgeOnce(context.Background(), p, zerolog.New(&buf))

	assert.Equal(t, int32(1), p.calls.Load())
	assert.Contains(t, buf.String(), "disk full")
}

func TestBuildWithCSVStorage(t *testing.T) {
	dir := t.TempDir() + "/data"
	cfg := config.Config{
		StorageDriver: config.StorageCSV,
		DataDir:       dir,
		LockDriver:    config.LockLocal,
		SlotInterval:  time.Hour,
		CascadeScope:  "staff",
	}

	a, err := Build(context.Background(), cfg, zerolog.Nop(), nil)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Service)
	require.Len(t, a.Checks, 1)
	assert.Equal(t, "storage", a.Checks[0].Name)
	assert.NoError(t, a.Checks[0].Ping(context.Background()))

	n, err := a.Service.PurgeExpiredSchedules(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBuildRejectsUnknownScope(t *testing.T) {
	cfg := config.Config{
		StorageDriver: config.StorageCSV,
		DataDir:       t.TempDir(),
		LockDriver:    config.LockLocal,
		SlotInterval:  time.Hour,
		CascadeScope:  "galaxy",
	}

	_, err := Build(context.Background(), cfg, zerolog.Nop(), nil)
	assert.Error(t, err)
}
