package ui

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNotifier(t *testing.T) {
	// NewNotifier with nil app should work (used in tests)
	notifier := NewNotifier(nil)
	assert.NotNil(t, notifier)
	assert.True(t, notifier.IsEnabled(), "notifier should be enabled by default")
}

func TestNotifier_SetEnabled(t *testing.T) {
	notifier := NewNotifier(nil)

	notifier.SetEnabled(false)
	assert.False(t, notifier.IsEnabled())

	notifier.SetEnabled(true)
	assert.True(t, notifier.IsEnabled())
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name      string
		typ       NotificationType
		detail    string
		wantTitle string
		wantBody  string
		wantOK    bool
	}{
		{"already running", NotifyAlreadyRunning, "", "MoniNet", "Another instance is already running.", true},
		{"usage reset", NotifyUsageReset, "", "Data Usage Reset", "Total upload and download were set to zero.", true},
		{"persist failed", NotifyPersistFailed, "/data/total_usage.json", "Data Usage Not Saved",
			"Could not write /data/total_usage.json. Totals are kept in memory.", true},
		{"unknown", NotificationType(999), "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := message(tt.typ, tt.detail)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTitle, msg.title)
			assert.Equal(t, tt.wantBody, msg.body)
		})
	}
}

func TestMessage_ResetAndFailureShareID(t *testing.T) {
	reset, _ := message(NotifyUsageReset, "")
	failed, _ := message(NotifyPersistFailed, "x")
	assert.Equal(t, reset.id, failed.id, "usage notices replace each other")
}

func TestNotifier_Notify_NilAppOrDisabled(t *testing.T) {
	notifier := NewNotifier(nil)

	// Should not panic with nil app
	notifier.Notify(NotifyAlreadyRunning, "")
	notifier.Notify(NotifyPersistFailed, "/tmp/x")
	notifier.Notify(NotificationType(999), "")

	notifier.SetEnabled(false)
	notifier.Notify(NotifyUsageReset, "")
}

func TestNotifier_ConcurrentAccess(t *testing.T) {
	notifier := NewNotifier(nil)

	iterations := 1000
	if testing.Short() {
		iterations = 100
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				notifier.SetEnabled(j%2 == 0)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				_ = notifier.IsEnabled()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				notifier.Notify(NotifyUsageReset, "")
			}
		}()
	}
	wg.Wait()
}
