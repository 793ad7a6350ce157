package display

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shini4i/moninet/internal/config"
	"github.com/shini4i/moninet/internal/stats"
	"github.com/shini4i/moninet/internal/usage"
)

type fakeSampler struct {
	mu        sync.Mutex
	latest    stats.Reading
	toggleErr error
	resets    int
}

func (f *fakeSampler) Latest() stats.Reading {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest
}

func (f *fakeSampler) Reset() (usage.Totals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	f.latest.Totals = usage.Totals{}
	return usage.Totals{}, nil
}

func (f *fakeSampler) ToggleUnit() (stats.Unit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.toggleErr != nil {
		return "", f.toggleErr
	}
	f.latest.Speed = f.latest.Speed.In(f.latest.Speed.Unit.Toggle())
	return f.latest.Speed.Unit, nil
}

func newSampler() *fakeSampler {
	return &fakeSampler{latest: stats.Reading{
		Speed:  stats.SpeedSample{UploadBytesPerSec: 100_000, DownloadBytesPerSec: 50_000}.In(stats.UnitMegabytes),
		Totals: usage.Totals{Uploaded: 1_100_000, Downloaded: 2_050_000},
	}}
}

func newManager(t *testing.T) (*config.Manager, *config.Paths) {
	t.Helper()
	dir := t.TempDir()
	paths := config.NewPaths(filepath.Join(dir, "config"), filepath.Join(dir, "data"))
	manager, err := config.NewManagerWithPaths(paths)
	require.NoError(t, err)
	return manager, paths
}

func TestNewController_StartsFromConfig(t *testing.T) {
	manager, _ := newManager(t)
	require.NoError(t, manager.UpdateField(func(cfg *config.Config) {
		cfg.ShowSpeed = false
		cfg.ShowTotalUsage = true
	}))

	c := NewController(newSampler(), manager)
	assert.Equal(t, stats.View{ShowSpeed: false, ShowTotalUsage: true}, c.View())

	// Without a config manager the defaults apply.
	assert.Equal(t, stats.View{ShowSpeed: true}, NewController(newSampler(), nil).View())
}

func TestController_Lines(t *testing.T) {
	c := NewController(newSampler(), nil)

	assert.Equal(t, []string{"↑ : 0.10 MB/s", "↓ : 0.05 MB/s"}, c.Lines(c.Latest()))

	c.ToggleTotalUsage()
	assert.Equal(t, []string{"↑ : 0.10 MB/s", "↓ : 0.05 MB/s", "↑ : 1.05 MB", "↓ : 1.96 MB"}, c.Lines(c.Latest()))

	c.ToggleSpeed()
	assert.Equal(t, []string{"↑ : 1.05 MB", "↓ : 1.96 MB"}, c.Lines(c.Latest()))

	c.ToggleTotalUsage()
	assert.Empty(t, c.Lines(c.Latest()))
}

func TestController_TogglesPersist(t *testing.T) {
	manager, paths := newManager(t)
	c := NewController(newSampler(), manager)

	var seen []stats.View
	c.OnViewChange(func(v stats.View) { seen = append(seen, v) })

	c.ToggleTotalUsage()
	c.ToggleSpeed()

	loaded, err := config.Load(paths.ConfigFile)
	require.NoError(t, err)
	assert.True(t, loaded.ShowTotalUsage)
	assert.False(t, loaded.ShowSpeed)

	assert.Equal(t, []stats.View{
		{ShowSpeed: true, ShowTotalUsage: true},
		{ShowSpeed: false, ShowTotalUsage: true},
	}, seen)
}

func TestController_ToggleUnit(t *testing.T) {
	manager, paths := newManager(t)
	sampler := newSampler()
	c := NewController(sampler, manager)

	unit, err := c.ToggleUnit()
	require.NoError(t, err)
	assert.Equal(t, stats.UnitMegabits, unit)
	assert.Equal(t, []string{"↑ : 0.76 Mbps", "↓ : 0.38 Mbps"}, c.Lines(c.Latest()))

	loaded, err := config.Load(paths.ConfigFile)
	require.NoError(t, err)
	assert.Equal(t, stats.UnitMegabits, loaded.Unit())
}

func TestController_ToggleUnitError(t *testing.T) {
	manager, paths := newManager(t)
	sampler := newSampler()
	sampler.toggleErr = errors.New("collector not running")
	c := NewController(sampler, manager)

	_, err := c.ToggleUnit()
	require.Error(t, err)

	loaded, err := config.Load(paths.ConfigFile)
	require.NoError(t, err)
	assert.Equal(t, stats.UnitMegabytes, loaded.Unit(), "a failed toggle must not be remembered")
}

func TestController_Reset(t *testing.T) {
	sampler := newSampler()
	c := NewController(sampler, nil)

	totals, err := c.Reset()
	require.NoError(t, err)
	assert.True(t, totals.IsZero())
	assert.Equal(t, 1, sampler.resets)
	assert.True(t, c.Latest().Totals.IsZero())
}

func TestController_ConcurrentToggles(t *testing.T) {
	c := NewController(newSampler(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.ToggleSpeed()
				_ = c.View()
			}
		}()
	}
	wg.Wait()

	// An even number of toggles leaves the speed lines visible.
	assert.True(t, c.View().ShowSpeed)
}
