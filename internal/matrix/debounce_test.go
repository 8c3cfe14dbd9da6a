package matrix

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AlexOwl/jtechdigital-ha/internal/clock"
)

func TestDebouncer_SingleRequest(t *testing.T) {
	clk := clock.NewMock(time.Unix(0, 0))
	var fired int
	d := NewDebouncer(clk, time.Second, func() { fired++ })

	d.Request()
	clk.Advance(999 * time.Millisecond)
	assert.Equal(t, 0, fired)

	clk.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)
}

func TestDebouncer_BurstCoalesces(t *testing.T) {
	clk := clock.NewMock(time.Unix(0, 0))
	var fired int
	d := NewDebouncer(clk, time.Second, func() { fired++ })

	for i := 0; i < 5; i++ {
		d.Request()
		clk.Advance(200 * time.Millisecond)
	}
	assert.Equal(t, 0, fired)

	clk.Advance(800 * time.Millisecond)
	assert.Equal(t, 1, fired)
}

func TestDebouncer_RestartsWindow(t *testing.T) {
	clk := clock.NewMock(time.Unix(0, 0))
	var fired int
	d := NewDebouncer(clk, time.Second, func() { fired++ })

	d.Request()
	clk.Advance(900 * time.Millisecond)
	d.Request()
	clk.Advance(900 * time.Millisecond)
	assert.Equal(t, 0, fired)

	clk.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, fired)
}

func TestDebouncer_FiresAgainAfterQuiet(t *testing.T) {
	clk := clock.NewMock(time.Unix(0, 0))
	var fired int
	d := NewDebouncer(clk, time.Second, func() { fired++ })

	d.Request()
	clk.Advance(time.Second)
	d.Request()
	clk.Advance(time.Second)
	assert.Equal(t, 2, fired)
}

func TestDebouncer_Cancel(t *testing.T) {
	clk := clock.NewMock(time.Unix(0, 0))
	var fired int
	d := NewDebouncer(clk, time.Second, func() { fired++ })

	d.Request()
	d.Cancel()
	clk.Advance(2 * time.Second)
	assert.Equal(t, 0, fired)

	// Cancel with nothing pending is a no-op.
	d.Cancel()
}
