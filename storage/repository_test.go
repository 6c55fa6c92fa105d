package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	window := time.Minute

	first := Next(Entry{}, false, now, window)
	assert.Equal(t, Entry{Count: 1, ResetAt: now.Add(window).UnixMilli()}, first)

	second := Next(first, true, now.Add(time.Second), window)
	assert.Equal(t, 2, second.Count)
	assert.Equal(t, first.ResetAt, second.ResetAt, "window end is fixed by the first hit")

	// At exactly resetAt the window is still open.
	atReset := Next(second, true, first.ResetTime(), window)
	assert.Equal(t, 3, atReset.Count)

	after := Next(atReset, true, first.ResetTime().Add(time.Millisecond), window)
	assert.Equal(t, 1, after.Count)
}
