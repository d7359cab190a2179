package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakePruner struct {
	calls int
}

func (f *fakePruner) PruneIdle(ttl time.Duration) int {
	f.calls++
	return 0
}

func TestSessionJanitorIntervalDerivedFromTTL(t *testing.T) {
	j := NewSessionJanitor(&fakePruner{}, 8*time.Hour)
	assert.Equal(t, 2*time.Hour, j.interval)

	// Short TTLs never poll more often than once a minute.
	j = NewSessionJanitor(&fakePruner{}, 2*time.Minute)
	assert.Equal(t, time.Minute, j.interval)
}

func TestSessionJanitorDisabledWithoutTTL(t *testing.T) {
	pruner := &fakePruner{}
	j := NewSessionJanitor(pruner, 0)
	j.Start()
	j.Stop()
	assert.Zero(t, pruner.calls)
}
