package sptr

import (
	"errors"
	"testing"
)

// resource counts its Destroy calls.
type resource struct {
	name      string
	destroyed *int
}

func (r *resource) Destroy() {
	if r.destroyed != nil {
		*r.destroyed++
	}
}

// closer is torn down through io.Closer.
type closer struct {
	closed int
	err    error
}

func (c *closer) Close() error {
	c.closed++
	return c.err
}

var errCloseFailed = errors.New("close failed")

// eventLog records block events delivered through SetObserver.
type eventLog struct {
	events []BlockEvent
	infos  []BlockInfo
}

func (l *eventLog) OnBlockEvent(ev BlockEvent, info BlockInfo) {
	l.events = append(l.events, ev)
	l.infos = append(l.infos, info)
}

func (l *eventLog) count(ev BlockEvent) int {
	n := 0
	for _, e := range l.events {
		if e == ev {
			n++
		}
	}
	return n
}

// countFor returns how often ev fired for block id.
func (l *eventLog) countFor(ev BlockEvent, id uint64) int {
	n := 0
	for i, e := range l.events {
		if e == ev && l.infos[i].ID == id {
			n++
		}
	}
	return n
}

func watchBlocks(t *testing.T) *eventLog {
	t.Helper()
	l := &eventLog{}
	prev := SetObserver(l)
	t.Cleanup(func() { SetObserver(prev) })
	return l
}

// blockOf exposes the control block ID of a handle for assertions.
func blockOf(o Owner) uint64 {
	return blockID(o.ownerBlock())
}
