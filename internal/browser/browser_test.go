package browser

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEntropy_Delay(t *testing.T) {
	e := Entropy{Randomize: true, Min: 8 * time.Second, Max: 22 * time.Second, rnd: rand.New(rand.NewPCG(1, 2))}
	for i := 0; i < 100; i++ {
		d := e.Delay()
		require.GreaterOrEqual(t, d, e.Min)
		require.Less(t, d, e.Max)
	}

	fixed := Entropy{Randomize: false, Min: 3 * time.Second, Max: 9 * time.Second}
	require.Equal(t, 3*time.Second, fixed.Delay())

	inverted := Entropy{Randomize: true, Min: 5 * time.Second, Max: time.Second}
	require.Equal(t, 5*time.Second, inverted.Delay())
}

func TestEntropy_Between(t *testing.T) {
	e := Entropy{rnd: rand.New(rand.NewPCG(3, 4))}
	for i := 0; i < 100; i++ {
		d := e.Between(50*time.Millisecond, 150*time.Millisecond)
		require.GreaterOrEqual(t, d, 50*time.Millisecond)
		require.Less(t, d, 150*time.Millisecond)
	}
	require.Equal(t, time.Second, e.Between(time.Second, time.Second))
}

func TestSubmitted(t *testing.T) {
	tests := []struct {
		prev, cur string
		want      bool
	}{
		{"https://twitter.com/compose/tweet", "https://twitter.com/octo/status/123", true},
		{"https://twitter.com/octo/status/123", "https://twitter.com/octo/status/123", false},
		{"https://twitter.com/compose/tweet", "https://twitter.com/home", false},
		{"https://twitter.com/compose/tweet", "https://twitter.com/compose/tweet", false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, submitted(tt.prev, tt.cur), tt.cur)
	}
}

func TestDisabledPlatforms(t *testing.T) {
	b := New(Options{Headless: true})
	ctx := context.Background()

	tw := NewTwitter(b, false)
	require.Equal(t, "twitter", tw.Platform())
	ok, err := tw.Post(ctx, "hi", "")
	require.False(t, ok)
	require.ErrorIs(t, err, ErrPlatformDisabled)
	ok, err = tw.PostInteractive(ctx, "hi", "")
	require.False(t, ok)
	require.ErrorIs(t, err, ErrPlatformDisabled)

	li := NewLinkedIn(b, false)
	require.Equal(t, "linkedin", li.Platform())
	_, err = li.Post(ctx, "hi", "")
	require.ErrorIs(t, err, ErrPlatformDisabled)
	_, err = li.PostInteractive(ctx, "hi", "")
	require.ErrorIs(t, err, ErrPlatformDisabled)

	// Nothing was started.
	require.Nil(t, b.browserCtx)
}

func TestClose_Unstarted(t *testing.T) {
	require.NoError(t, New(Options{}).Close())
}

func TestSleep(t *testing.T) {
	require.NoError(t, sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
	require.ErrorIs(t, sleep(ctx, 0), context.Canceled)
}

func TestAllocatorOptions_UserDataDir(t *testing.T) {
	without := New(Options{}).allocatorOptions()
	with := New(Options{UserDataDir: t.TempDir()}).allocatorOptions()
	require.Len(t, with, len(without)+1)
}
