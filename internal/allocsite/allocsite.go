// Package allocsite records where control blocks were allocated.
//
// A Depot stores call stacks deduplicated by hash: each unique stack is
// kept once and referenced by a 64-bit FNV-1a hash of its program counters.
// Leak reports look up the hash of every block still alive and print the
// stack that created it.
//
// Usage:
//
//	d := allocsite.NewDepot(8)
//	hash := d.Capture(1) // skip the caller's own frame
//	...
//	fmt.Print(d.Get(hash).Format())
package allocsite

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"runtime"
	"strings"
	"sync"
)

const (
	// DefaultDepth is the number of frames kept per stack.
	DefaultDepth = 8

	// MaxDepth bounds the depth accepted by NewDepot.
	MaxDepth = 32
)

// Stack is a captured call stack.
type Stack struct {
	PC []uintptr
}

// Depot is a deduplicating stack store. Safe for concurrent use.
type Depot struct {
	depth int

	mu     sync.RWMutex
	stacks map[uint64]*Stack

	// skipPrefixes lists function name prefixes hidden by Format, in
	// addition to runtime frames.
	skipPrefixes []string
}

// NewDepot returns a depot keeping depth frames per stack. Out of range
// depths are clamped to [1, MaxDepth].
func NewDepot(depth int, skipPrefixes ...string) *Depot {
	if depth < 1 {
		depth = DefaultDepth
	}
	if depth > MaxDepth {
		depth = MaxDepth
	}
	return &Depot{
		depth:        depth,
		stacks:       make(map[uint64]*Stack),
		skipPrefixes: skipPrefixes,
	}
}

// Depth returns the configured frame count.
func (d *Depot) Depth() int { return d.depth }

// Capture records the current goroutine's stack and returns its hash.
//
// skip is the number of frames above Capture's caller to drop; 0 starts
// the stack at the caller. A zero hash means nothing was captured.
func (d *Depot) Capture(skip int) uint64 {
	pcs := make([]uintptr, d.depth)
	// +2: runtime.Callers and Capture itself.
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return 0
	}
	pcs = pcs[:n]
	hash := hashStack(pcs)

	d.mu.RLock()
	_, exists := d.stacks[hash]
	d.mu.RUnlock()
	if exists {
		return hash
	}

	d.mu.Lock()
	if _, exists := d.stacks[hash]; !exists {
		d.stacks[hash] = &Stack{PC: pcs}
	}
	d.mu.Unlock()
	return hash
}

// Get returns the stack for hash, or nil if unknown.
func (d *Depot) Get(hash uint64) *Stack {
	if hash == 0 {
		return nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stacks[hash]
}

// Len returns the number of unique stacks stored.
func (d *Depot) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.stacks)
}

// Reset drops every stored stack.
func (d *Depot) Reset() {
	d.mu.Lock()
	d.stacks = make(map[uint64]*Stack)
	d.mu.Unlock()
}

// Format renders a stack using the depot's frame filter.
func (d *Depot) Format(st *Stack) string {
	return st.format(d.skipPrefixes)
}

// Format renders the stack, hiding runtime frames:
//
//	main.build()
//	    /path/to/main.go:45
func (st *Stack) Format() string {
	return st.format(nil)
}

func (st *Stack) format(skipPrefixes []string) string {
	if st == nil || len(st.PC) == 0 {
		return "  <unknown>\n"
	}

	var buf strings.Builder
	frames := runtime.CallersFrames(st.PC)
	for {
		frame, more := frames.Next()
		if frame.PC == 0 {
			break
		}
		if !hidden(frame.Function, skipPrefixes) {
			fmt.Fprintf(&buf, "  %s()\n", frame.Function)
			fmt.Fprintf(&buf, "      %s:%d\n", frame.File, frame.Line)
		}
		if !more {
			break
		}
	}

	if buf.Len() == 0 {
		return "  <runtime internal>\n"
	}
	return buf.String()
}

func hidden(function string, skipPrefixes []string) bool {
	if strings.HasPrefix(function, "runtime.") {
		return true
	}
	for _, p := range skipPrefixes {
		if strings.HasPrefix(function, p) {
			return true
		}
	}
	return false
}

func hashStack(pcs []uintptr) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, pc := range pcs {
		binary.LittleEndian.PutUint64(buf[:], uint64(pc))
		_, _ = h.Write(buf[:]) // hash.Hash never fails
	}
	return h.Sum64()
}
