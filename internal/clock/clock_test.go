package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVirtualClock_AdvanceFiresWaiters(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	vc := NewVirtualClock(start)

	ch := vc.After(5 * time.Second)
	select {
	case <-ch:
		t.Fatal("fired before advance")
	default:
	}

	vc.Advance(5 * time.Second)

	select {
	case got := <-ch:
		assert.Equal(t, start.Add(5*time.Second), got)
	default:
		t.Fatal("did not fire after advance")
	}
}

func TestVirtualClock_AfterZeroFiresImmediately(t *testing.T) {
	vc := NewVirtualClock(time.Now())
	ch := vc.After(0)
	select {
	case <-ch:
	default:
		t.Fatal("zero-duration After did not fire immediately")
	}
}

func TestVirtualClock_SleepRespectsContext(t *testing.T) {
	vc := NewVirtualClock(time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := vc.Sleep(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSystemClock_Sleep(t *testing.T) {
	sc := NewSystemClock()
	err := sc.Sleep(context.Background(), time.Millisecond)
	require.NoError(t, err)
}
