package allocsite

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCapture tests basic stack capture and retrieval.
func TestCapture(t *testing.T) {
	d := NewDepot(DefaultDepth)

	hash := d.Capture(0)
	require.NotZero(t, hash)

	st := d.Get(hash)
	require.NotNil(t, st)
	assert.NotEmpty(t, st.PC)
	assert.LessOrEqual(t, len(st.PC), DefaultDepth)
}

// TestCapture_Deduplication tests that identical stacks share one entry.
func TestCapture_Deduplication(t *testing.T) {
	d := NewDepot(DefaultDepth)

	var hashes [2]uint64
	for i := range hashes {
		hashes[i] = d.Capture(0)
	}

	assert.Equal(t, hashes[0], hashes[1])
	assert.Same(t, d.Get(hashes[0]), d.Get(hashes[1]))
	assert.Equal(t, 1, d.Len())
}

func captureFromHelper(d *Depot) uint64 {
	return d.Capture(0)
}

// TestCapture_DistinctSites tests that different call sites differ.
func TestCapture_DistinctSites(t *testing.T) {
	d := NewDepot(DefaultDepth)

	h1 := d.Capture(0)
	h2 := captureFromHelper(d)

	assert.NotEqual(t, h1, h2)
	assert.Equal(t, 2, d.Len())
}

// TestCapture_Skip tests that skip drops the caller's frame.
func TestCapture_Skip(t *testing.T) {
	d := NewDepot(DefaultDepth)

	out := d.Format(d.Get(captureFromHelperSkip(d)))

	assert.NotContains(t, out, "captureFromHelperSkip")
	assert.Contains(t, out, "TestCapture_Skip")
}

func captureFromHelperSkip(d *Depot) uint64 {
	return d.Capture(1)
}

// TestFormat tests rendering and filtering.
func TestFormat(t *testing.T) {
	d := NewDepot(DefaultDepth)
	st := d.Get(d.Capture(0))

	out := st.Format()
	assert.Contains(t, out, "TestFormat")
	assert.Contains(t, out, "allocsite_test.go:")
	assert.NotContains(t, out, "runtime.")

	filtered := NewDepot(DefaultDepth, "github.com/boboxa2010/SmartPointers/internal/allocsite.")
	assert.NotContains(t, filtered.Format(st), "TestFormat")
}

// TestFormat_Empty tests nil and empty stacks.
func TestFormat_Empty(t *testing.T) {
	var st *Stack
	assert.Equal(t, "  <unknown>\n", st.Format())
	assert.Equal(t, "  <unknown>\n", (&Stack{}).Format())
}

// TestGet_Unknown tests lookups that miss.
func TestGet_Unknown(t *testing.T) {
	d := NewDepot(DefaultDepth)
	assert.Nil(t, d.Get(0))
	assert.Nil(t, d.Get(12345))
}

// TestNewDepot_ClampsDepth tests depth bounds.
func TestNewDepot_ClampsDepth(t *testing.T) {
	assert.Equal(t, DefaultDepth, NewDepot(0).Depth())
	assert.Equal(t, MaxDepth, NewDepot(1000).Depth())
	assert.Equal(t, 3, NewDepot(3).Depth())
}

// TestReset tests clearing the depot.
func TestReset(t *testing.T) {
	d := NewDepot(DefaultDepth)
	h := d.Capture(0)

	d.Reset()

	assert.Zero(t, d.Len())
	assert.Nil(t, d.Get(h))
}

// TestCapture_Concurrent tests concurrent captures from one site.
func TestCapture_Concurrent(t *testing.T) {
	d := NewDepot(DefaultDepth)

	var wg sync.WaitGroup
	hashes := make([]uint64, 16)
	for i := range hashes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hashes[i] = d.Capture(0)
		}(i)
	}
	wg.Wait()

	for _, h := range hashes {
		require.NotZero(t, h)
		assert.True(t, strings.Contains(d.Format(d.Get(h)), "TestCapture_Concurrent"))
	}
}
