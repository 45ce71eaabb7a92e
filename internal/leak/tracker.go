// Package leak tracks live control blocks and reports the ones that were
// never freed, together with the stack that allocated them.
//
// A Tracker is a ctrlblock.Observer. Installed as (part of) the process
// observer it records every EventAllocated and forgets it on EventFreed.
// Whatever remains is
// a leak candidate: a block whose strong or weak references were never
// all released.
package leak

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/boboxa2010/SmartPointers/internal/allocsite"
	"github.com/boboxa2010/SmartPointers/internal/ctrlblock"
)

// Record is one live block.
type Record struct {
	Info  ctrlblock.Info
	Stack uint64 // allocsite hash, 0 if not captured
}

// Tracker records live blocks. Safe for concurrent use.
type Tracker struct {
	depot *allocsite.Depot

	mu   sync.Mutex
	live map[uint64]*Record
}

// NewTracker returns a tracker whose allocation stacks are stored in depot.
// A nil depot disables stack capture.
//
// Stacks are captured from inside OnBlockEvent, so they start with the
// observer and constructor frames; the depot's skip prefixes are expected
// to hide those when formatting, and its depth to leave room for them.
func NewTracker(depot *allocsite.Depot) *Tracker {
	return &Tracker{
		depot: depot,
		live:  make(map[uint64]*Record),
	}
}

// OnBlockEvent implements ctrlblock.Observer.
func (t *Tracker) OnBlockEvent(ev ctrlblock.Event, info ctrlblock.Info) {
	switch ev {
	case ctrlblock.EventAllocated:
		var hash uint64
		if t.depot != nil {
			hash = t.depot.Capture(0)
		}
		t.mu.Lock()
		t.live[info.ID] = &Record{Info: info, Stack: hash}
		t.mu.Unlock()

	case ctrlblock.EventFreed:
		t.mu.Lock()
		delete(t.live, info.ID)
		t.mu.Unlock()
	}
}

// Live returns the records of blocks not yet freed, ordered by block ID.
func (t *Tracker) Live() []Record {
	t.mu.Lock()
	out := make([]Record, 0, len(t.live))
	for _, rec := range t.live {
		out = append(out, Record{Info: rec.Info.Current(), Stack: rec.Stack})
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Info.ID < out[j].Info.ID })
	return out
}

// Len returns the number of live blocks.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

// WriteReport prints every live block to w and returns how many there were.
// Nothing is written when no block is live.
//
// Output format:
//
//	==================
//	WARNING: UNRELEASED CONTROL BLOCK
//	block 12 (holder *main.Node) state=payload-dead strong=0 weak=1
//	Allocated at:
//	  main.build()
//	      /path/to/main.go:45
//	==================
func (t *Tracker) WriteReport(w io.Writer) int {
	recs := t.Live()
	for _, rec := range recs {
		fmt.Fprintf(w, "==================\n")
		fmt.Fprintf(w, "WARNING: UNRELEASED CONTROL BLOCK\n")
		fmt.Fprintf(w, "block %d (%s %s) state=%s strong=%d weak=%d\n",
			rec.Info.ID, rec.Info.Kind, rec.Info.TypeName, rec.Info.State,
			rec.Info.Strong, rec.Info.Weak)
		fmt.Fprintf(w, "Allocated at:\n")
		if t.depot == nil || rec.Stack == 0 {
			fmt.Fprintf(w, "  (allocation stack not captured)\n")
		} else {
			fmt.Fprint(w, t.depot.Format(t.depot.Get(rec.Stack)))
		}
	}
	if len(recs) > 0 {
		fmt.Fprintf(w, "==================\n")
		fmt.Fprintf(w, "%d control block(s) still referenced\n", len(recs))
	}
	return len(recs)
}
