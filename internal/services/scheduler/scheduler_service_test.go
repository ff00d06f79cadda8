package scheduler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func noopJob() error { return nil }

func TestRegisterJob(t *testing.T) {
	service := NewService(arbor.NewLogger())

	require.NoError(t, service.RegisterJob("stats-refresh", "*/5 * * * *", "Refresh library stats", noopJob))

	t.Run("duplicate name rejected", func(t *testing.T) {
		err := service.RegisterJob("stats-refresh", "*/5 * * * *", "", noopJob)
		assert.Error(t, err)
	})

	t.Run("invalid schedule rejected", func(t *testing.T) {
		err := service.RegisterJob("bad", "every five minutes", "", noopJob)
		assert.Error(t, err)
	})

	t.Run("nil handler rejected", func(t *testing.T) {
		err := service.RegisterJob("nil-handler", "* * * * *", "", nil)
		assert.Error(t, err)
	})
}

func TestStartStop(t *testing.T) {
	service := NewService(arbor.NewLogger())
	require.NoError(t, service.RegisterJob("temp-sweep", "0 * * * *", "Sweep staging files", noopJob))

	assert.False(t, service.IsRunning())
	require.NoError(t, service.Start())
	assert.True(t, service.IsRunning())

	assert.Error(t, service.Start())

	require.NoError(t, service.Stop())
	assert.False(t, service.IsRunning())

	assert.NoError(t, service.Stop())
}

func TestEnableDisable(t *testing.T) {
	service := NewService(arbor.NewLogger())
	require.NoError(t, service.RegisterJob("stats-refresh", "*/5 * * * *", "", noopJob))

	require.NoError(t, service.DisableJob("stats-refresh"))
	status, err := service.GetJobStatus("stats-refresh")
	require.NoError(t, err)
	assert.False(t, status.Enabled)

	require.NoError(t, service.DisableJob("stats-refresh"))

	require.NoError(t, service.EnableJob("stats-refresh"))
	status, err = service.GetJobStatus("stats-refresh")
	require.NoError(t, err)
	assert.True(t, status.Enabled)

	assert.Error(t, service.EnableJob("unregistered"))
	assert.Error(t, service.DisableJob("unregistered"))
}

func TestJobStatusTracking(t *testing.T) {
	service := NewService(arbor.NewLogger())
	require.NoError(t, service.RegisterJob("failing", "* * * * *", "Always fails", func() error {
		return errors.New("boom")
	}))

	// Run the job body directly; cron granularity is too coarse for tests.
	service.mu.RLock()
	j := service.jobs["failing"]
	service.mu.RUnlock()
	service.runner(j)()

	status, err := service.GetJobStatus("failing")
	require.NoError(t, err)
	assert.NotNil(t, status.LastRun)
	assert.Equal(t, "boom", status.LastError)
	assert.False(t, status.IsRunning)

	t.Run("panicking handler is contained", func(t *testing.T) {
		require.NoError(t, service.RegisterJob("panicking", "* * * * *", "", func() error {
			panic("unexpected")
		}))
		service.mu.RLock()
		p := service.jobs["panicking"]
		service.mu.RUnlock()
		service.runner(p)()

		status, err := service.GetJobStatus("panicking")
		require.NoError(t, err)
		assert.Contains(t, status.LastError, "job panicked")
	})

	t.Run("unknown job", func(t *testing.T) {
		_, err := service.GetJobStatus("missing")
		assert.Error(t, err)
	})

	t.Run("all statuses", func(t *testing.T) {
		statuses := service.GetAllJobStatuses()
		assert.Len(t, statuses, 2)
		assert.Contains(t, statuses, "failing")
		assert.Contains(t, statuses, "panicking")
	})
}
