package ui

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shini4i/moninet/internal/stats"
)

func TestPersistFailureRaised(t *testing.T) {
	var flag atomic.Bool

	steps := []struct {
		name    string
		reading stats.Reading
		want    bool
	}{
		{"initial reading never notifies", stats.Reading{Kind: stats.ReadingInitial, PersistFailed: true}, false},
		{"saved tick", stats.Reading{Kind: stats.ReadingTick}, false},
		{"first failure", stats.Reading{Kind: stats.ReadingTick, PersistFailed: true}, true},
		{"failure persists", stats.Reading{Kind: stats.ReadingTick, PersistFailed: true}, false},
		{"command failure while failing", stats.Reading{Kind: stats.ReadingCommand, PersistFailed: true}, false},
		{"unit toggle does not clear the failure", stats.Reading{Kind: stats.ReadingCommand}, false},
		{"failing tick after toggle stays quiet", stats.Reading{Kind: stats.ReadingTick, PersistFailed: true}, false},
		{"recovered", stats.Reading{Kind: stats.ReadingTick}, false},
		{"failed reset raises", stats.Reading{Kind: stats.ReadingCommand, PersistFailed: true}, true},
		{"recovered again", stats.Reading{Kind: stats.ReadingTick}, false},
		{"fails again", stats.Reading{Kind: stats.ReadingTick, PersistFailed: true}, true},
	}

	for _, step := range steps {
		assert.Equal(t, step.want, persistFailureRaised(&flag, step.reading), step.name)
	}
}
