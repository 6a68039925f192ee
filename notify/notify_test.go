package notify

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_Durations(t *testing.T) {
	f := NewFeed(10)
	assert.Equal(t, ShortDuration, f.Notify(Success, "ok").Duration)
	assert.Equal(t, ShortDuration, f.Notify(Info, "fyi").Duration)
	assert.Equal(t, LongDuration, f.Notify(Error, "boom").Duration)
}

func TestFeed_Active(t *testing.T) {
	start := time.Date(2024, 4, 21, 16, 23, 27, 0, time.UTC)
	clock := start
	f := NewFeed(10)
	f.now = func() time.Time { return clock }

	f.Notify(Info, "first")
	clock = start.Add(2 * time.Second)
	f.Notify(Error, "second")

	active := f.Active(start.Add(4 * time.Second))
	require.Len(t, active, 1)
	assert.Equal(t, "second", active[0].Message)

	assert.Len(t, f.Active(start.Add(1*time.Second)), 2)
	assert.Empty(t, f.Active(start.Add(10*time.Second)))
	assert.Len(t, f.Recent(), 2)
}

func TestFeed_Bounded(t *testing.T) {
	f := NewFeed(3)
	for i := 0; i < 5; i++ {
		f.Notify(Info, fmt.Sprintf("msg %d", i))
	}
	recent := f.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "msg 2", recent[0].Message)
	assert.Equal(t, "msg 4", recent[2].Message)
	assert.NotEqual(t, recent[0].ID, recent[1].ID)
}
