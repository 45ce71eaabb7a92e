package sptr

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracking_LiveBlocks(t *testing.T) {
	restore := EnableTracking()
	defer restore()
	require.True(t, Tracking())

	a := MakeShared(42)
	b := NewShared(&resource{name: "b"})
	w := b.Weak()

	live := LiveBlocks()
	require.Len(t, live, 2)
	assert.Equal(t, blockOf(a), live[0].ID)
	assert.Equal(t, KindHolder, live[0].Kind)
	assert.Equal(t, blockOf(b), live[1].ID)
	assert.Equal(t, KindPointer, live[1].Kind)

	b.Release()
	live = LiveBlocks()
	require.Len(t, live, 2, "weak reference keeps b's block")
	assert.Equal(t, StatePayloadDead, live[1].State)
	assert.Equal(t, uint(0), live[1].Strong)
	assert.Equal(t, uint(1), live[1].Weak)

	w.Release()
	a.Release()
	assert.Empty(t, LiveBlocks())
	assert.Zero(t, WriteLeakReport(&bytes.Buffer{}))
}

func TestTracking_LeakReport(t *testing.T) {
	defer EnableTracking()()

	leaked := MakeShared(resource{name: "leaked"})

	var buf bytes.Buffer
	n := WriteLeakReport(&buf)
	require.Equal(t, 1, n)

	out := buf.String()
	assert.Contains(t, out, "WARNING: UNRELEASED CONTROL BLOCK")
	assert.Contains(t, out, "(holder *sptr.resource) state=created strong=1 weak=0")
	assert.Contains(t, out, "TestTracking_LeakReport", "allocation site names the caller")
	assert.NotContains(t, out, "ctrlblock.NewHolder", "allocation machinery is hidden")
	assert.Contains(t, out, "1 control block(s) still referenced")

	leaked.Release()
	assert.Zero(t, WriteLeakReport(&buf))
}

func TestTracking_Restore(t *testing.T) {
	before := Tracking()
	restore := EnableTracking()
	p := MakeShared(1)
	require.Len(t, LiveBlocks(), 1)

	restore()
	assert.Equal(t, before, Tracking())
	if !before {
		assert.Nil(t, LiveBlocks())
		assert.Zero(t, WriteLeakReport(&bytes.Buffer{}))
	}
	p.Release()
}

// TestTracking_WithUserObserver tests that tracking and SetObserver do not
// displace each other.
func TestTracking_WithUserObserver(t *testing.T) {
	events := watchBlocks(t)
	defer EnableTracking()()

	p := MakeShared(1)
	assert.Len(t, LiveBlocks(), 1)
	assert.Equal(t, 1, events.count(EventAllocated))

	prev := SetObserver(nil)
	assert.Same(t, events, prev)
	q := MakeShared(2)
	assert.Len(t, LiveBlocks(), 2)
	assert.Equal(t, 1, events.count(EventAllocated))
	SetObserver(events)

	p.Release()
	q.Release()
	assert.Empty(t, LiveBlocks())
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	prev := SetObserver(NewLogObserver(l))
	defer SetObserver(prev)

	p := MakeShared(resource{})
	w := p.Weak()
	p.Release()
	w.Release()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "event=allocated")
	assert.Contains(t, lines[0], "kind=holder")
	assert.Contains(t, lines[0], "type=*sptr.resource")
	assert.Contains(t, lines[1], "event=payload-destroyed")
	assert.Contains(t, lines[1], "strong=0 weak=1")
	assert.Contains(t, lines[2], "event=freed")
}

func TestLogObserver_LevelGated(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	prev := SetObserver(NewLogObserver(l))
	defer SetObserver(prev)

	p := MakeShared(1)
	p.Release()
	assert.Empty(t, buf.String())
}

func TestLogObserver_PackageLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)
	prev := SetObserver(NewLogObserver(nil))
	defer SetObserver(prev)

	p := MakeShared(1)
	p.Release()
	assert.Contains(t, buf.String(), "sptr: block event")
}

func TestMultiObserver(t *testing.T) {
	a, b := &eventLog{}, &eventLog{}
	prev := SetObserver(MultiObserver(a, nil, b))
	defer SetObserver(prev)

	p := MakeShared(1)
	p.Release()

	assert.Equal(t, []BlockEvent{EventAllocated, EventPayloadDestroyed, EventFreed}, a.events)
	assert.Equal(t, a.events, b.events)
}

func TestGetInfo(t *testing.T) {
	info := GetInfo()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, "non-atomic", info.Counting)

	defer EnableTracking()()
	assert.True(t, GetInfo().Tracking)
}
